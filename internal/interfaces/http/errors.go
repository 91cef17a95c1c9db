package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onboarding-api/internal/application/dto"
	"github.com/jhoicas/onboarding-api/internal/domain"
)

// classify traduce un error de dominio a status HTTP y cuerpo de error.
// El orden importa: los errores tipados se revisan antes que los centinelas que envuelven.
func classify(err error) (int, dto.ErrorResponse) {
	var (
		stepErr   *domain.StepValidationError
		fieldErrs domain.ValidationErrors
		missing   *domain.MissingDataError
		transErr  *domain.TransitionError
		sendErr   *domain.SendError
		extErr    *domain.ExternalCallError
	)
	switch {
	case errors.As(err, &stepErr):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "VALIDATION", Message: "el paso tiene campos inválidos", Fields: stepErr.Fields}
	case errors.As(err, &fieldErrs):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: fieldErrs}
	case errors.As(err, &missing):
		fields := make(map[string]string, len(missing.Fields))
		for _, f := range missing.Fields {
			fields[f] = "requerido"
		}
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "MISSING_FIELDS", Message: missing.Error(), Fields: fields}
	case errors.As(err, &transErr):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: transErr.Error()}
	case errors.As(err, &sendErr):
		if sendErr.Err == nil {
			return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_EMAIL", Message: sendErr.Error(), Fields: map[string]string{"company_email": sendErr.Reason}}
		}
		return fiber.StatusBadGateway, dto.ErrorResponse{Code: "OTP_SEND_FAILED", Message: "no se pudo enviar el código, intente de nuevo"}
	case errors.As(err, &extErr):
		return fiber.StatusBadGateway, dto.ErrorResponse{Code: "EXTERNAL_ERROR", Message: "fallo al " + extErr.Op + ", intente de nuevo"}
	case errors.Is(err, domain.ErrActionInProgress):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ACTION_IN_PROGRESS", Message: err.Error()}
	case errors.Is(err, domain.ErrOTPCooldown):
		return fiber.StatusTooManyRequests, dto.ErrorResponse{Code: "OTP_COOLDOWN", Message: err.Error()}
	case errors.Is(err, domain.ErrOTPState):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "OTP_STATE", Message: err.Error()}
	case errors.Is(err, domain.ErrOTPNotVerified):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_NOT_VERIFIED", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "username o email ya registrado"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"}
	case errors.Is(err, context.Canceled):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CANCELLED", Message: "la operación fue reemplazada por otra más reciente"}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

// writeError responde con el error clasificado.
func writeError(c *fiber.Ctx, err error) error {
	status, body := classify(err)
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
