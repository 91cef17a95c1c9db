// Package catalog expone los datos de referencia del alta de empresas: servicios y tarifas,
// duraciones de plan, tipos de empresa, sectores, motivos de rechazo y la jerarquía
// país → estado → ciudad. Los datos viven en catalog.yaml, embebido en el binario.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultData []byte

// Service servicio contratable con su tarifa por empleado y precio mínimo mensual (INR).
type Service struct {
	ID              string `yaml:"id" json:"id"`
	Name            string `yaml:"name" json:"name"`
	RatePerEmployee int64  `yaml:"rate_per_employee" json:"rate_per_employee"`
	MinimumPrice    int64  `yaml:"minimum_price" json:"minimum_price"`
}

// Plan duración de facturación con su descuento.
type Plan struct {
	ID              string `yaml:"id" json:"id"`
	Label           string `yaml:"label" json:"label"`
	Months          int    `yaml:"months" json:"months"`
	DiscountPercent int    `yaml:"discount_percent" json:"discount_percent"`
}

// Option par id/etiqueta para enumeraciones simples.
type Option struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// RejectionReason motivo de rechazo. Si RequiresDetails, el rechazo exige detalles.
type RejectionReason struct {
	ID              string `yaml:"id" json:"id"`
	Label           string `yaml:"label" json:"label"`
	RequiresDetails bool   `yaml:"requires_details" json:"requires_details"`
}

// State estado/provincia con sus ciudades.
type State struct {
	Name   string   `yaml:"name" json:"name"`
	Cities []string `yaml:"cities" json:"cities"`
}

// Country país; solo algunos traen lista de estados.
type Country struct {
	Name   string  `yaml:"name" json:"name"`
	States []State `yaml:"states,omitempty" json:"states,omitempty"`
}

// Catalog datos de referencia en memoria (solo lectura tras Load).
type Catalog struct {
	Services         []Service         `yaml:"services"`
	Plans            []Plan            `yaml:"plans"`
	CompanyTypes     []Option          `yaml:"company_types"`
	IndustryTypes    []Option          `yaml:"industry_types"`
	RejectionReasons []RejectionReason `yaml:"rejection_reasons"`
	Countries        []Country         `yaml:"countries"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Load parsea un catálogo YAML y verifica que no falten secciones.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	if len(c.Services) == 0 || len(c.Plans) == 0 {
		return nil, fmt.Errorf("catalog: servicios y planes son obligatorios")
	}
	if len(c.RejectionReasons) == 0 {
		return nil, fmt.Errorf("catalog: sin motivos de rechazo")
	}
	return &c, nil
}

// Default devuelve el catálogo embebido. Entra en pánico si el YAML embebido es inválido.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(defaultData)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultCat
}

// Service busca un servicio por id.
func (c *Catalog) Service(id string) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// Plan busca una duración de plan por id.
func (c *Catalog) Plan(id string) (Plan, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// IsCompanyType indica si el id es un tipo de empresa del catálogo.
func (c *Catalog) IsCompanyType(id string) bool { return hasOption(c.CompanyTypes, id) }

// IsIndustryType indica si el id es un sector del catálogo.
func (c *Catalog) IsIndustryType(id string) bool { return hasOption(c.IndustryTypes, id) }

// RejectionReason busca un motivo de rechazo por id.
func (c *Catalog) RejectionReason(id string) (RejectionReason, bool) {
	for _, r := range c.RejectionReasons {
		if r.ID == id {
			return r, true
		}
	}
	return RejectionReason{}, false
}

// country busca un país sin distinguir mayúsculas.
func (c *Catalog) country(name string) (*Country, bool) {
	name = strings.TrimSpace(name)
	for i := range c.Countries {
		if strings.EqualFold(c.Countries[i].Name, name) {
			return &c.Countries[i], true
		}
	}
	return nil, false
}

// HasStateList informa si el país restringe estado/ciudad a una lista de referencia (p.ej. India).
func (c *Catalog) HasStateList(country string) bool {
	ct, ok := c.country(country)
	return ok && len(ct.States) > 0
}

// States nombres de estados del país (vacío si el país no tiene lista).
func (c *Catalog) States(country string) []string {
	ct, ok := c.country(country)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(ct.States))
	for _, s := range ct.States {
		out = append(out, s.Name)
	}
	return out
}

// Cities ciudades de un estado; nil si el país o el estado no existen.
func (c *Catalog) Cities(country, state string) []string {
	ct, ok := c.country(country)
	if !ok {
		return nil
	}
	for _, s := range ct.States {
		if strings.EqualFold(s.Name, strings.TrimSpace(state)) {
			return s.Cities
		}
	}
	return nil
}

// HasState informa si el estado pertenece a la lista del país.
func (c *Catalog) HasState(country, state string) bool {
	ct, ok := c.country(country)
	if !ok {
		return false
	}
	for _, s := range ct.States {
		if strings.EqualFold(s.Name, strings.TrimSpace(state)) {
			return true
		}
	}
	return false
}

// HasCity informa si la ciudad pertenece al estado del país.
func (c *Catalog) HasCity(country, state, city string) bool {
	for _, name := range c.Cities(country, state) {
		if strings.EqualFold(name, strings.TrimSpace(city)) {
			return true
		}
	}
	return false
}

func hasOption(opts []Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
