package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrMissingData        = errors.New("faltan campos obligatorios")
	ErrExternalCall       = errors.New("fallo en servicio externo")
	ErrActionInProgress   = errors.New("ya hay una acción en curso para este registro")
	ErrOTPNotVerified     = errors.New("el email no ha sido verificado")
	ErrOTPState           = errors.New("operación OTP no permitida en el estado actual")
	ErrOTPCooldown        = errors.New("debe esperar antes de reenviar el código")
)

// ValidationErrors errores por campo (campo -> mensaje). Se muestran junto al input correspondiente.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ErrInvalidInput.Error()
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error { return ErrInvalidInput }

// StepValidationError bloquea el avance del asistente al siguiente paso.
type StepValidationError struct {
	Step   int
	Fields ValidationErrors
}

func (e *StepValidationError) Error() string {
	return fmt.Sprintf("paso %d inválido: %s", e.Step, e.Fields.Error())
}

func (e *StepValidationError) Unwrap() error { return ErrInvalidInput }

// TransitionError cambio de estado pedido desde un estado de origen inválido.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no se puede pasar de %q a %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// MissingDataError campos críticos ausentes en el envío final; se aborta antes de llamar al exterior.
type MissingDataError struct {
	Fields []string
}

func (e *MissingDataError) Error() string {
	return "faltan campos obligatorios: " + strings.Join(e.Fields, ", ")
}

func (e *MissingDataError) Unwrap() error { return ErrMissingData }

// ExternalCallError fallo de envío, OTP o API administrativa.
type ExternalCallError struct {
	Op  string
	Err error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap permite errors.Is tanto con ErrExternalCall como con la causa original.
func (e *ExternalCallError) Unwrap() []error { return []error{ErrExternalCall, e.Err} }

// SendError el código OTP no pudo enviarse (email mal formado o fallo del proveedor).
type SendError struct {
	Email  string
	Reason string
	Err    error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("envío OTP a %q: %s: %v", e.Email, e.Reason, e.Err)
	}
	return fmt.Sprintf("envío OTP a %q: %s", e.Email, e.Reason)
}

func (e *SendError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrExternalCall, e.Err}
	}
	return []error{ErrInvalidInput}
}
