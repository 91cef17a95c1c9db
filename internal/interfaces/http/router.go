package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onboarding-api/internal/application/auth"
	"github.com/jhoicas/onboarding-api/internal/application/backoffice"
	"github.com/jhoicas/onboarding-api/internal/application/wizard"
	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WizardUC  *wizard.WizardUseCase
	ReviewUC  *backoffice.ReviewUseCase
	AuthUC    *auth.AuthUseCase
	Catalog   *catalog.Catalog
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	if deps.Log != nil {
		api.Use(RequestLogger(deps.Log))
	}

	// Catálogo (público)
	catalogHandler := NewCatalogHandler(deps.Catalog)
	api.Get("/catalog", catalogHandler.Get)
	api.Get("/catalog/countries/:country/states", catalogHandler.States)
	api.Get("/catalog/countries/:country/states/:state/cities", catalogHandler.Cities)

	// Asistente de alta (público)
	onb := api.Group("/onboarding")
	onbHandler := NewOnboardingHandler(deps.WizardUC)
	onb.Post("/quote", onbHandler.Quote)
	onb.Post("/drafts", onbHandler.CreateDraft)
	onb.Get("/drafts/:id", onbHandler.GetDraft)
	onb.Put("/drafts/:id/steps/:step", onbHandler.SaveStep)
	onb.Post("/drafts/:id/otp/send", onbHandler.SendOTP)
	onb.Post("/drafts/:id/otp/verify", onbHandler.VerifyOTP)
	onb.Post("/drafts/:id/otp/resend", onbHandler.ResendOTP)
	onb.Get("/drafts/:id/quote.pdf", onbHandler.QuotePDF)
	onb.Post("/drafts/:id/submit", onbHandler.Submit)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Panel de administración (Bearer Token + rol)
	admin := api.Group("/admin",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RoleSuperAdmin, entity.RoleReviewer),
	)
	reviewHandler := NewReviewHandler(deps.ReviewUC)
	admin.Get("/onboardings", reviewHandler.List)
	admin.Get("/onboardings/summary", reviewHandler.Summary)
	admin.Get("/onboardings/:id", reviewHandler.GetByID)
	admin.Post("/onboardings/:id/review", reviewHandler.StartReview)
	admin.Post("/onboardings/:id/approve", reviewHandler.Approve)
	admin.Post("/onboardings/:id/reject", reviewHandler.Reject)
	admin.Post("/onboardings/:id/documents", reviewHandler.AddDocument)
	admin.Patch("/onboardings/:id/documents/:docId", reviewHandler.VerifyDocument)

	admin.Post("/admins", RequireRole(entity.RoleSuperAdmin), authHandler.CreateAdmin)
}
