package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/onboarding-api/internal/application/auth"
	"github.com/jhoicas/onboarding-api/internal/application/backoffice"
	"github.com/jhoicas/onboarding-api/internal/application/ports"
	"github.com/jhoicas/onboarding-api/internal/application/wizard"
	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/onboarding"
	"github.com/jhoicas/onboarding-api/internal/domain/otp"
	"github.com/jhoicas/onboarding-api/internal/domain/pricing"
	"github.com/jhoicas/onboarding-api/internal/domain/repository"
	"github.com/jhoicas/onboarding-api/internal/infrastructure/events"
	"github.com/jhoicas/onboarding-api/internal/infrastructure/mail"
	"github.com/jhoicas/onboarding-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/onboarding-api/internal/infrastructure/pdf"
	"github.com/jhoicas/onboarding-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/onboarding-api/internal/interfaces/http"
	"github.com/jhoicas/onboarding-api/internal/worker"
	"github.com/jhoicas/onboarding-api/pkg/config"
	"github.com/jhoicas/onboarding-api/pkg/logger"
)

// publisher puerto de eventos que además se cierra al apagar.
type publisher interface {
	ports.EventPublisher
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "insecure-development-secret"
		log.Warn().Msg("JWT_SECRET vacío: usando un secreto de desarrollo")
	}

	ctx := context.Background()

	// Persistencia: memoria (desarrollo) o PostgreSQL
	var (
		draftRepo      repository.DraftRepository
		onboardingRepo repository.OnboardingRepository
		adminRepo      repository.AdminRepository
	)
	switch cfg.DB.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("migraciones")
		}
		defer pool.Close()
		if len(applied) > 0 {
			log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
		}
		draftRepo = postgres.NewDraftRepository(pool)
		onboardingRepo = postgres.NewOnboardingRepository(pool)
		adminRepo = postgres.NewAdminRepository(pool)
	default:
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		draftRepo = memory.NewDraftRepository()
		onboardingRepo = memory.NewOnboardingRepository()
		adminRepo = memory.NewAdminRepository()
	}

	// Correo: SMTP si está configurado; si no, solo log
	var notifier ports.Notifier
	if cfg.SMTP.Enabled() {
		notifier = mail.NewSMTPNotifier(cfg.SMTP)
		log.Info().Str("host", cfg.SMTP.Host).Int("port", cfg.SMTP.Port).Msg("correo vía SMTP")
	} else {
		notifier = mail.NewLogNotifier(log)
		log.Warn().Msg("SMTP_HOST vacío: los correos solo se registran en el log")
	}

	// Eventos: Kafka si hay brokers; si no, solo log
	var pub publisher
	if cfg.Kafka.Enabled() {
		pub = events.NewKafkaPublisher(cfg.Kafka, log)
	} else {
		pub = events.NewLogPublisher(log)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar publicador de eventos")
		}
	}()

	cat := catalog.Default()
	wizardUC := wizard.NewWizardUseCase(wizard.Deps{
		Drafts:    draftRepo,
		Records:   onboardingRepo,
		Validator: onboarding.NewValidator(cat),
		Pricing:   pricing.NewCalculator(cat),
		OTP: otp.NewRegistry(notifier, otp.Config{
			Issuer:   cfg.OTP.Issuer,
			Cooldown: cfg.OTP.Cooldown,
			TTL:      cfg.OTP.TTL,
		}),
		PDF:      infrapdf.NewQuotePDFGenerator(cat),
		Notifier: notifier,
		Events:   pub,
		Log:      log,
	})
	reviewUC := backoffice.NewReviewUseCase(onboardingRepo, cat, notifier, pub, log)
	authUC := auth.NewAuthUseCase(adminRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Limpieza periódica de borradores abandonados
	cleanup := worker.NewCleanupWorker(wizardUC, cfg.Wizard.DraftTTL, cfg.Wizard.CleanupSchedule, log)
	if err := cleanup.Start(); err != nil {
		log.Fatal().Err(err).Msg("worker de limpieza")
	}
	defer cleanup.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Onboarding API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WizardUC:  wizardUC,
		ReviewUC:  reviewUC,
		AuthUC:    authUC,
		Catalog:   cat,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
