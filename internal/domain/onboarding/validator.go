// Package onboarding contiene las reglas de validación del asistente de alta de empresas.
package onboarding

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// StepResult resultado de validar un paso.
type StepResult struct {
	Valid  bool                    `json:"valid"`
	Errors domain.ValidationErrors `json:"errors,omitempty"`
}

// Validator valida los pasos del asistente contra las reglas de campo y el catálogo.
type Validator struct {
	v   *validator.Validate
	cat *catalog.Catalog
}

// NewValidator registra las validaciones propias sobre go-playground/validator.
func NewValidator(cat *catalog.Catalog) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	regex := map[string]func(string) bool{
		"person_name": personNameRe.MatchString,
		"in_mobile":   IsValidMobile,
		"gstin":       IsValidGSTIN,
		"pan":         IsValidPAN,
		"pincode":     IsValidPincode,
		"website":     websiteRe.MatchString,
	}
	for tag, fn := range regex {
		fn := fn
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		})
	}
	_ = v.RegisterValidation("company_type", func(fl validator.FieldLevel) bool {
		return cat.IsCompanyType(fl.Field().String())
	})
	_ = v.RegisterValidation("industry_type", func(fl validator.FieldLevel) bool {
		return cat.IsIndustryType(fl.Field().String())
	})
	_ = v.RegisterValidation("plan_duration", func(fl validator.FieldLevel) bool {
		_, ok := cat.Plan(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("service_id", func(fl validator.FieldLevel) bool {
		_, ok := cat.Service(fl.Field().String())
		return ok
	})

	return &Validator{v: v, cat: cat}
}

// ValidateStep valida solo los campos del paso indicado.
// El paso 2 no tiene campos: es válido si el email ya fue verificado por OTP.
func (val *Validator) ValidateStep(step int, data entity.OnboardingData, otpVerified bool) (StepResult, error) {
	if step < 0 || step >= entity.StepCount {
		return StepResult{}, fmt.Errorf("%w: paso %d fuera de rango", domain.ErrInvalidInput, step)
	}
	errs := domain.ValidationErrors{}

	if step == entity.StepEmailOTP {
		if !otpVerified {
			errs["company_email"] = "el email de la empresa debe verificarse con el código OTP"
		}
		return result(errs), nil
	}

	if err := val.v.StructPartial(data, stepFields[step]...); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return StepResult{}, fmt.Errorf("validar paso %d: %w", step, err)
		}
		for _, fe := range verrs {
			field := fe.Field()
			if i := strings.IndexByte(field, '['); i > 0 {
				field = field[:i]
			}
			if _, exists := errs[field]; !exists {
				errs[field] = message(fe)
			}
		}
	}

	if step == entity.StepAddress {
		val.validateLocation(data, errs)
	}
	return result(errs), nil
}

// validateLocation exige que estado y ciudad pertenezcan a la lista del país cuando existe (India).
func (val *Validator) validateLocation(data entity.OnboardingData, errs domain.ValidationErrors) {
	if data.Country == "" || !val.cat.HasStateList(data.Country) {
		return
	}
	if _, bad := errs["state"]; !bad && !val.cat.HasState(data.Country, data.State) {
		errs["state"] = "estado no válido para " + data.Country
		return
	}
	if _, bad := errs["city"]; !bad && data.State != "" && !val.cat.HasCity(data.Country, data.State, data.City) {
		errs["city"] = "ciudad no válida para " + data.State
	}
}

// MissingFields nombres de los campos obligatorios vacíos.
func MissingFields(data entity.OnboardingData) []string {
	var missing []string
	for _, f := range requiredFields {
		if f.isEmpty(data) {
			missing = append(missing, f.json)
		}
	}
	return missing
}

// ValidateAll revalida la unión de todos los pasos antes del envío final.
// Devuelve *domain.MissingDataError si faltan campos o *domain.StepValidationError
// con el primer paso inválido.
func (val *Validator) ValidateAll(data entity.OnboardingData, otpVerified bool) error {
	if missing := MissingFields(data); len(missing) > 0 {
		return &domain.MissingDataError{Fields: missing}
	}
	for step := 0; step < entity.StepCount; step++ {
		res, err := val.ValidateStep(step, data, otpVerified)
		if err != nil {
			return err
		}
		if !res.Valid {
			return &domain.StepValidationError{Step: step, Fields: res.Errors}
		}
	}
	return nil
}

func result(errs domain.ValidationErrors) StepResult {
	if len(errs) == 0 {
		return StepResult{Valid: true}
	}
	return StepResult{Valid: false, Errors: errs}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "seleccione al menos " + fe.Param()
		}
		if fe.Kind() == reflect.Int {
			return "debe ser al menos " + fe.Param()
		}
		return "debe tener al menos " + fe.Param() + " caracteres"
	case "max":
		if fe.Kind() == reflect.Int {
			return "debe ser como máximo " + fe.Param()
		}
		return "debe tener como máximo " + fe.Param() + " caracteres"
	case "email":
		return "email inválido"
	case "person_name":
		return "solo se permiten letras y espacios"
	case "in_mobile":
		return "debe tener 10 dígitos y empezar por 6, 7, 8 o 9"
	case "gstin":
		return "GSTIN inválido (formato 22AAAAA0000A1Z5)"
	case "pan":
		return "PAN inválido (formato ABCDE1234F)"
	case "pincode":
		return "PIN inválido (6 dígitos, no empieza por 0)"
	case "website":
		return "URL inválida"
	case "company_type":
		return "tipo de empresa no válido"
	case "industry_type":
		return "sector no válido"
	case "plan_duration":
		return "duración de plan no válida"
	case "service_id":
		return "servicio no válido"
	case "unique":
		return "no se permiten servicios repetidos"
	default:
		return "valor inválido"
	}
}
