package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onboarding-api/internal/application/dto"
	"github.com/jhoicas/onboarding-api/internal/application/wizard"
)

// OnboardingHandler maneja el asistente público de alta.
type OnboardingHandler struct {
	uc *wizard.WizardUseCase
}

// NewOnboardingHandler construye el handler.
func NewOnboardingHandler(uc *wizard.WizardUseCase) *OnboardingHandler {
	return &OnboardingHandler{uc: uc}
}

// Quote godoc
// @Summary      Vista previa de precios
// @Description  available=false mientras falten empleados, servicios o plan.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuoteRequest  true  "employees, services, plan_duration"
// @Success      200   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/onboarding/quote [post]
func (h *OnboardingHandler) Quote(c *fiber.Ctx) error {
	var in dto.QuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return c.JSON(h.uc.Quote(in))
}

// CreateDraft godoc
// @Summary      Iniciar asistente
// @Tags         onboarding
// @Produce      json
// @Success      201  {object}  dto.DraftResponse
// @Router       /api/onboarding/drafts [post]
func (h *OnboardingHandler) CreateDraft(c *fiber.Ctx) error {
	out, err := h.uc.CreateDraft(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetDraft godoc
// @Summary      Estado del asistente
// @Tags         onboarding
// @Produce      json
// @Param        id   path  string  true  "ID del borrador"
// @Success      200  {object}  dto.DraftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/onboarding/drafts/{id} [get]
func (h *OnboardingHandler) GetDraft(c *fiber.Ctx) error {
	out, err := h.uc.GetDraft(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SaveStep godoc
// @Summary      Guardar un paso
// @Description  Solo se toman los campos del paso. Si son inválidos se guardan igual pero el asistente no avanza (422).
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del borrador"
// @Param        step  path  int                  true  "Paso (0, 1, 3, 4)"
// @Param        body  body  dto.SaveStepRequest  true  "Campos del paso"
// @Success      200   {object}  dto.DraftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/onboarding/drafts/{id}/steps/{step} [put]
func (h *OnboardingHandler) SaveStep(c *fiber.Ctx) error {
	step, err := strconv.Atoi(c.Params("step"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paso inválido"})
	}
	var in dto.SaveStepRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SaveStep(c.UserContext(), c.Params("id"), step, in.OnboardingData)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SendOTP godoc
// @Summary      Enviar código de verificación al email de la empresa
// @Tags         onboarding
// @Produce      json
// @Param        id   path  string  true  "ID del borrador"
// @Success      200  {object}  dto.DraftResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/onboarding/drafts/{id}/otp/send [post]
func (h *OnboardingHandler) SendOTP(c *fiber.Ctx) error {
	out, err := h.uc.SendOTP(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ResendOTP godoc
// @Summary      Reenviar código (tras el cooldown)
// @Tags         onboarding
// @Produce      json
// @Param        id   path  string  true  "ID del borrador"
// @Success      200  {object}  dto.DraftResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Router       /api/onboarding/drafts/{id}/otp/resend [post]
func (h *OnboardingHandler) ResendOTP(c *fiber.Ctx) error {
	out, err := h.uc.ResendOTP(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// VerifyOTP godoc
// @Summary      Verificar código
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del borrador"
// @Param        body  body  dto.VerifyOTPRequest  true  "code"
// @Success      200   {object}  dto.VerifyOTPResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/onboarding/drafts/{id}/otp/verify [post]
func (h *OnboardingHandler) VerifyOTP(c *fiber.Ctx) error {
	var in dto.VerifyOTPRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.VerifyOTP(c.UserContext(), c.Params("id"), in.Code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// QuotePDF godoc
// @Summary      Cotización en PDF
// @Tags         onboarding
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del borrador"
// @Success      200  {file}    binary
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/onboarding/drafts/{id}/quote.pdf [get]
func (h *OnboardingHandler) QuotePDF(c *fiber.Ctx) error {
	pdf, err := h.uc.QuotePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="quotation.pdf"`)
	return c.Send(pdf)
}

// Submit godoc
// @Summary      Envío final de la solicitud
// @Description  Revalida todo el borrador. Responde con el sobre {success, payload:{success, data|error, message}}.
// @Tags         onboarding
// @Produce      json
// @Param        id   path  string  true  "ID del borrador"
// @Success      201  {object}  dto.SubmitResponse
// @Failure      409  {object}  dto.SubmitResponse
// @Failure      422  {object}  dto.SubmitResponse
// @Failure      502  {object}  dto.SubmitResponse
// @Router       /api/onboarding/drafts/{id}/submit [post]
func (h *OnboardingHandler) Submit(c *fiber.Ctx) error {
	rec, err := h.uc.Submit(c.UserContext(), c.Params("id"))
	if err != nil {
		status, body := classify(err)
		return c.Status(status).JSON(dto.SubmitResponse{
			Success: false,
			Payload: dto.SubmitPayload{Success: false, Error: body.Code, Message: body.Message},
		})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SubmitResponse{
		Success: true,
		Payload: dto.SubmitPayload{Success: true, Data: rec, Message: "solicitud recibida"},
	})
}
