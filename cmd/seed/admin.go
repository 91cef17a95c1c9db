package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/onboarding-api/internal/application/auth"
	"github.com/jhoicas/onboarding-api/internal/application/dto"
	"github.com/jhoicas/onboarding-api/internal/infrastructure/postgres"
	"github.com/jhoicas/onboarding-api/pkg/config"
)

var adminIn dto.CreateAdminRequest

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Crea el primer superadmin",
	Long: `Crea un superadmin en la base configurada (DATABASE_URL o DB_*), aplicando antes
las migraciones pendientes. Falla si ya existe algún administrador.`,
	RunE: runAdmin,
}

func init() {
	f := adminCmd.Flags()
	f.StringVar(&adminIn.Username, "username", "", "username (3-50, letras, dígitos o _)")
	f.StringVar(&adminIn.Email, "email", "", "email")
	f.StringVar(&adminIn.Password, "password", "", "password (≥8 con mayúscula, minúscula y dígito)")
	f.StringVar(&adminIn.Name, "name", "", "nombre visible")
	_ = adminCmd.MarkFlagRequired("username")
	_ = adminCmd.MarkFlagRequired("email")
	_ = adminCmd.MarkFlagRequired("password")
}

func runAdmin(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()
	if _, err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	uc := auth.NewAuthUseCase(postgres.NewAdminRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	out, err := uc.Bootstrap(ctx, adminIn)
	if err != nil {
		return fmt.Errorf("crear superadmin: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Superadmin %s (%s) creado con id %s\n", out.Username, out.Email, out.ID)
	return nil
}
