package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
)

var locationsOut string

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Genera el SQL de ubicaciones desde el catálogo",
	Long: `Escribe INSERTs idempotentes (ON CONFLICT) para location_countries, location_states
y location_cities. Por defecto el archivo queda junto a las migraciones embebidas.`,
	RunE: runLocations,
}

func init() {
	locationsCmd.Flags().StringVarP(&locationsOut, "out", "o", "",
		"archivo de salida (por defecto internal/infrastructure/postgres/migrations/002_seed_locations.sql; '-' = stdout)")
}

func runLocations(cmd *cobra.Command, _ []string) error {
	var w io.Writer = cmd.OutOrStdout()
	outPath := locationsOut
	if outPath == "" {
		outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_locations.sql")
	}
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("crear archivo: %w", err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	stats, err := writeLocationsSQL(bw, catalog.Default())
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if outPath != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "Generado %s: %d países, %d estados, %d ciudades\n",
			outPath, stats.countries, stats.states, stats.cities)
	}
	return nil
}

type locationStats struct {
	countries, states, cities int
}

// writeLocationsSQL escribe el script en w: países primero, luego estados y ciudades con
// subconsultas a su padre.
func writeLocationsSQL(w io.Writer, cat *catalog.Catalog) (locationStats, error) {
	var st locationStats
	var b strings.Builder

	b.WriteString("-- Países, estados y ciudades del catálogo de alta\n")
	b.WriteString("-- Generado por cmd/seed locations; no editar a mano\n\n")

	b.WriteString("-- 1. Países\n")
	b.WriteString("INSERT INTO location_countries (name) VALUES\n")
	for i, ct := range cat.Countries {
		sep := ","
		if i == len(cat.Countries)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s')%s\n", escapeSQL(ct.Name), sep)
		st.countries++
	}
	b.WriteString("ON CONFLICT (name) DO NOTHING;\n\n")

	b.WriteString("-- 2. Estados y ciudades\n")
	for _, ct := range cat.Countries {
		for _, s := range ct.States {
			fmt.Fprintf(&b, "INSERT INTO location_states (country_id, name)\n")
			fmt.Fprintf(&b, "SELECT id, '%s' FROM location_countries WHERE name = '%s'\n",
				escapeSQL(s.Name), escapeSQL(ct.Name))
			b.WriteString("ON CONFLICT (country_id, name) DO NOTHING;\n")
			st.states++
			for _, city := range s.Cities {
				fmt.Fprintf(&b, "INSERT INTO location_cities (state_id, name)\n")
				fmt.Fprintf(&b, "SELECT s.id, '%s' FROM location_states s JOIN location_countries c ON c.id = s.country_id\n",
					escapeSQL(city))
				fmt.Fprintf(&b, "WHERE c.name = '%s' AND s.name = '%s'\n", escapeSQL(ct.Name), escapeSQL(s.Name))
				b.WriteString("ON CONFLICT (state_id, name) DO NOTHING;\n")
				st.cities++
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return st, err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
