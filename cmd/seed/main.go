// seed herramientas de datos iniciales del servicio de alta.
//
// Uso:
//
//	go run ./cmd/seed locations            # genera migrations/002_seed_locations.sql desde el catálogo
//	go run ./cmd/seed admin --username ... # crea el primer superadmin en PostgreSQL
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Datos iniciales del servicio de alta",
	Long: `Herramientas de datos iniciales.

Subcomandos:
  locations - Genera el SQL de países, estados y ciudades a partir del catálogo embebido
  admin     - Crea el primer superadmin (solo si no existe ningún administrador)`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(locationsCmd, adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
