package onboarding

import (
	"regexp"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// Formatos de los campos del alta (India).
var (
	personNameRe = regexp.MustCompile(`^[A-Za-z ]+$`)
	mobileRe     = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	// GSTIN: 2 dígitos (estado) + PAN (5 letras, 4 dígitos, 1 letra) + 1 alfanumérico + 'Z' + 1 alfanumérico.
	gstinRe   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)
	panRe     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	pincodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	websiteRe = regexp.MustCompile(`^(https?://)?([A-Za-z0-9-]+\.)+[A-Za-z]{2,}(:[0-9]{1,5})?(/[^\s]*)?$`)
)

// IsValidGSTIN valida el formato posicional del GSTIN.
func IsValidGSTIN(s string) bool { return gstinRe.MatchString(s) }

// IsValidPAN valida el formato del PAN.
func IsValidPAN(s string) bool { return panRe.MatchString(s) }

// IsValidMobile valida un móvil indio de 10 dígitos que empieza por 6-9.
func IsValidMobile(s string) bool { return mobileRe.MatchString(s) }

// IsValidPincode valida un PIN de 6 dígitos que no empieza por 0.
func IsValidPincode(s string) bool { return pincodeRe.MatchString(s) }

// Campos por paso (nombres Go del struct entity.OnboardingData). El paso 2 (OTP) no tiene campos.
var stepFields = [...][]string{
	{"FirstName", "LastName"},
	{"CompanyName", "CompanyEmail", "CompanyMobile", "CompanyGST", "CompanyType", "IndustryType",
		"CompanyLandline", "CompanyWebsite", "CompanyPAN"},
	{},
	{"CompanyAddress", "Country", "State", "City", "Pincode"},
	{"Employees", "PlanDuration", "Services"},
}

// requiredFields campos obligatorios para el envío final, con su nombre JSON.
var requiredFields = []struct {
	json    string
	isEmpty func(d entity.OnboardingData) bool
}{
	{"first_name", func(d entity.OnboardingData) bool { return d.FirstName == "" }},
	{"last_name", func(d entity.OnboardingData) bool { return d.LastName == "" }},
	{"company_name", func(d entity.OnboardingData) bool { return d.CompanyName == "" }},
	{"company_email", func(d entity.OnboardingData) bool { return d.CompanyEmail == "" }},
	{"company_mobile", func(d entity.OnboardingData) bool { return d.CompanyMobile == "" }},
	{"company_gst", func(d entity.OnboardingData) bool { return d.CompanyGST == "" }},
	{"company_type", func(d entity.OnboardingData) bool { return d.CompanyType == "" }},
	{"industry_type", func(d entity.OnboardingData) bool { return d.IndustryType == "" }},
	{"company_address", func(d entity.OnboardingData) bool { return d.CompanyAddress == "" }},
	{"country", func(d entity.OnboardingData) bool { return d.Country == "" }},
	{"state", func(d entity.OnboardingData) bool { return d.State == "" }},
	{"city", func(d entity.OnboardingData) bool { return d.City == "" }},
	{"pincode", func(d entity.OnboardingData) bool { return d.Pincode == "" }},
	{"employees", func(d entity.OnboardingData) bool { return d.Employees == 0 }},
	{"plan_duration", func(d entity.OnboardingData) bool { return d.PlanDuration == "" }},
	{"services", func(d entity.OnboardingData) bool { return len(d.Services) == 0 }},
}
