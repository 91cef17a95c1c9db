package onboarding_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/onboarding"
)

func validData() entity.OnboardingData {
	return entity.OnboardingData{
		FirstName:      "Asha",
		LastName:       "Verma",
		CompanyName:    "Verma Textiles",
		CompanyEmail:   "accounts@vermatextiles.in",
		CompanyMobile:  "9123456789",
		CompanyGST:     "27AAPFU0939F1ZV",
		CompanyType:    "private_limited",
		IndustryType:   "textile",
		CompanyAddress: "Plot 14, MIDC Industrial Area, Bhosari",
		Country:        "India",
		State:          "Maharashtra",
		City:           "Pune",
		Pincode:        "411026",
		Employees:      50,
		PlanDuration:   "quarterly",
		Services:       []string{"inventory", "accounts"},
	}
}

func newValidator() *onboarding.Validator {
	return onboarding.NewValidator(catalog.Default())
}

func TestValidateStep_DatosValidosPasanTodosLosPasos(t *testing.T) {
	v := newValidator()
	for step := 0; step < entity.StepCount; step++ {
		res, err := v.ValidateStep(step, validData(), true)
		require.NoError(t, err)
		assert.True(t, res.Valid, "paso %d: %v", step, res.Errors)
	}
}

func TestValidateStep_SoloValidaCamposDelPaso(t *testing.T) {
	v := newValidator()
	d := validData()
	d.CompanyGST = "" // campo del paso 1

	res, err := v.ValidateStep(entity.StepPersonal, d, false)
	require.NoError(t, err)
	assert.True(t, res.Valid, "el paso 0 no debe mirar campos de empresa")

	res, err = v.ValidateStep(entity.StepCompany, d, false)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "company_gst")
	assert.Len(t, res.Errors, 1)
}

func TestValidateStep_PasoFueraDeRango(t *testing.T) {
	_, err := newValidator().ValidateStep(5, validData(), true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateStep_PasoOTPDependeDeVerificacion(t *testing.T) {
	v := newValidator()
	res, err := v.ValidateStep(entity.StepEmailOTP, entity.OnboardingData{}, false)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "company_email")

	res, err = v.ValidateStep(entity.StepEmailOTP, entity.OnboardingData{}, true)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateStep_Movil(t *testing.T) {
	v := newValidator()
	cases := map[string]bool{
		"9123456789":  true,
		"6000000000":  true,
		"5123456789":  false, // empieza por 5
		"912345678":   false, // 9 dígitos
		"91234567890": false,
		"91234a6789":  false,
	}
	for mobile, ok := range cases {
		d := validData()
		d.CompanyMobile = mobile
		res, err := v.ValidateStep(entity.StepCompany, d, false)
		require.NoError(t, err)
		assert.Equal(t, ok, res.Valid, "móvil %q", mobile)
	}
}

func TestIsValidGSTIN_Aceptados(t *testing.T) {
	for _, g := range []string{"27AAPFU0939F1ZV", "22AAAAA0000A1Z5", "07ABCDE1234FZZ9", "29ABCDE1234F0Z0"} {
		assert.True(t, onboarding.IsValidGSTIN(g), g)
	}
}

// Romper cualquier restricción posicional debe invalidar el GSTIN.
func TestIsValidGSTIN_CadaPosicionRechaza(t *testing.T) {
	base := "27AAPFU0939F1ZV"
	require.True(t, onboarding.IsValidGSTIN(base))

	// Sustituto inválido para cada posición (0-based).
	bad := map[int]byte{
		0: 'A', 1: 'X', // dígitos
		2: '1', 3: '2', 4: '3', 5: '4', 6: '5', // letras
		7: 'A', 8: 'B', 9: 'C', 10: 'D', // dígitos
		11: '9',  // letra
		12: '-',  // alfanumérico
		13: 'Y',  // 'Z' fija
		14: '#',  // alfanumérico
	}
	for pos, ch := range bad {
		b := []byte(base)
		b[pos] = ch
		assert.False(t, onboarding.IsValidGSTIN(string(b)), "posición %d: %s", pos, string(b))
	}
	assert.False(t, onboarding.IsValidGSTIN(base[:14]), "14 caracteres")
	assert.False(t, onboarding.IsValidGSTIN(base+"1"), "16 caracteres")
	assert.False(t, onboarding.IsValidGSTIN(strings.ToLower(base)), "minúsculas")
}

func TestValidateStep_CamposOpcionalesSoloSiPresentes(t *testing.T) {
	v := newValidator()
	d := validData()
	d.CompanyPAN = "ABCDE12345"
	d.CompanyWebsite = "no es una url"
	d.CompanyLandline = "0201234567"

	res, err := v.ValidateStep(entity.StepCompany, d, false)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "company_pan")
	assert.Contains(t, res.Errors, "company_website")
	assert.Contains(t, res.Errors, "company_landline")

	d.CompanyPAN = "ABCDE1234F"
	d.CompanyWebsite = "https://www.vermatextiles.in/about"
	d.CompanyLandline = ""
	res, err = v.ValidateStep(entity.StepCompany, d, false)
	require.NoError(t, err)
	assert.True(t, res.Valid, "%v", res.Errors)
}

func TestValidateStep_Nombres(t *testing.T) {
	v := newValidator()
	d := validData()
	d.FirstName = "A"
	d.LastName = "Ver4ma"
	res, err := v.ValidateStep(entity.StepPersonal, d, false)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "first_name")
	assert.Contains(t, res.Errors, "last_name")
}

func TestValidateStep_DireccionIndiaUsaListaDeReferencia(t *testing.T) {
	v := newValidator()

	d := validData()
	d.City = "Chennai"
	res, err := v.ValidateStep(entity.StepAddress, d, false)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "city")

	d = validData()
	d.State = "Atlantis"
	res, err = v.ValidateStep(entity.StepAddress, d, false)
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "state")

	// Fuera de India estado/ciudad son texto libre.
	d = validData()
	d.Country = "Nepal"
	d.State = "Bagmati"
	d.City = "Kathmandu"
	res, err = v.ValidateStep(entity.StepAddress, d, false)
	require.NoError(t, err)
	assert.True(t, res.Valid, "%v", res.Errors)

	d = validData()
	d.Pincode = "011026"
	res, err = v.ValidateStep(entity.StepAddress, d, false)
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "pincode")
}

func TestValidateStep_ServiciosYPlan(t *testing.T) {
	v := newValidator()

	d := validData()
	d.Services = []string{}
	d.Employees = 10001
	d.PlanDuration = "weekly"
	res, err := v.ValidateStep(entity.StepServicePlan, d, false)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "services")
	assert.Contains(t, res.Errors, "employees")
	assert.Contains(t, res.Errors, "plan_duration")

	d = validData()
	d.Services = []string{"inventory", "crm"}
	res, err = v.ValidateStep(entity.StepServicePlan, d, false)
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "services")
}

func TestValidateAll_CamposFaltantes(t *testing.T) {
	d := validData()
	d.CompanyGST = ""
	d.Pincode = ""
	d.Services = nil

	err := newValidator().ValidateAll(d, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingData)

	var missing *domain.MissingDataError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"company_gst", "pincode", "services"}, missing.Fields)
}

func TestValidateAll_SinOTPFallaEnPaso2(t *testing.T) {
	err := newValidator().ValidateAll(validData(), false)
	var stepErr *domain.StepValidationError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, entity.StepEmailOTP, stepErr.Step)
}

func TestValidateAll_OK(t *testing.T) {
	assert.NoError(t, newValidator().ValidateAll(validData(), true))
}
