package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onboarding-api/internal/application/backoffice"
	"github.com/jhoicas/onboarding-api/internal/application/dto"
)

// ReviewHandler panel de revisión de solicitudes (protegido).
type ReviewHandler struct {
	uc *backoffice.ReviewUseCase
}

// NewReviewHandler construye el handler.
func NewReviewHandler(uc *backoffice.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

// List godoc
// @Summary      Listar solicitudes
// @Description  Filtros combinados con AND; status y business_type aceptan listas separadas por coma.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status         query  string  false  "pending,under_review,approved,rejected"
// @Param        from           query  string  false  "Desde (2006-01-02 o RFC3339)"
// @Param        to             query  string  false  "Hasta, inclusive"
// @Param        business_type  query  string  false  "Sectores"
// @Param        search         query  string  false  "Texto libre"
// @Param        sort_by        query  string  false  "company_name | business_type | submission_date | status"
// @Param        order          query  string  false  "asc | desc"
// @Param        page           query  int     false  "Página (desde 1)"
// @Param        page_size      query  int     false  "Tamaño (máx. 100)"
// @Success      200  {object}  dto.OnboardingPageResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/admin/onboardings [get]
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	var in dto.ListOnboardingsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	q, err := backoffice.ParseQuery(in)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Contadores por estado
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SummaryResponse
// @Router       /api/admin/onboardings/summary [get]
func (h *ReviewHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de una solicitud
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.OnboardingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/onboardings/{id} [get]
func (h *ReviewHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// StartReview godoc
// @Summary      Tomar una solicitud para revisión (pending → under_review)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.OnboardingResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/onboardings/{id}/review [post]
func (h *ReviewHandler) StartReview(c *fiber.Ctx) error {
	out, err := h.uc.StartReview(c.UserContext(), c.Params("id"), GetAdminID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string              true  "ID"
// @Param        body  body  dto.ApproveRequest  false "Notas"
// @Success      200   {object}  dto.OnboardingResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/admin/onboardings/{id}/approve [post]
func (h *ReviewHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.Approve(c.UserContext(), c.Params("id"), GetAdminID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar
// @Description  reason_id del catálogo; si el motivo exige detalles, details ≥ 10 caracteres.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string             true  "ID"
// @Param        body  body  dto.RejectRequest  true  "Motivo"
// @Success      200   {object}  dto.OnboardingResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/admin/onboardings/{id}/reject [post]
func (h *ReviewHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Reject(c.UserContext(), c.Params("id"), GetAdminID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddDocument godoc
// @Summary      Registrar documento
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "ID"
// @Param        body  body  dto.AddDocumentRequest  true  "type, name, url"
// @Success      201   {object}  entity.Document
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/onboardings/{id}/documents [post]
func (h *ReviewHandler) AddDocument(c *fiber.Ctx) error {
	var in dto.AddDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	doc, err := h.uc.AddDocument(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// VerifyDocument godoc
// @Summary      Marcar documento como verificado
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  string                     true  "ID"
// @Param        docId  path  string                     true  "ID del documento"
// @Param        body   body  dto.VerifyDocumentRequest  true  "verified"
// @Success      200    {object}  dto.OnboardingResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/admin/onboardings/{id}/documents/{docId} [patch]
func (h *ReviewHandler) VerifyDocument(c *fiber.Ctx) error {
	var in dto.VerifyDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetDocumentVerified(c.UserContext(), c.Params("id"), c.Params("docId"), in.Verified)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
