package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onboarding-api/internal/application/dto"
	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/pricing"
)

// CatalogHandler expone los datos de referencia (público).
type CatalogHandler struct {
	cat *catalog.Catalog
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

// Get godoc
// @Summary      Catálogo de referencia
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  dto.CatalogResponse
// @Router       /api/catalog [get]
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	countries := make([]string, 0, len(h.cat.Countries))
	for _, ct := range h.cat.Countries {
		countries = append(countries, ct.Name)
	}
	return c.JSON(dto.CatalogResponse{
		Services:         h.cat.Services,
		Plans:            h.cat.Plans,
		CompanyTypes:     h.cat.CompanyTypes,
		IndustryTypes:    h.cat.IndustryTypes,
		RejectionReasons: h.cat.RejectionReasons,
		Countries:        countries,
		GSTPercent:       int(pricing.GSTPercent.IntPart()),
	})
}

// States godoc
// @Summary      Estados de un país
// @Tags         catalog
// @Produce      json
// @Param        country  path  string  true  "País"
// @Success      200  {array}   string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalog/countries/{country}/states [get]
func (h *CatalogHandler) States(c *fiber.Ctx) error {
	states := h.cat.States(param(c, "country"))
	if states == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "país no encontrado"})
	}
	return c.JSON(states)
}

// Cities godoc
// @Summary      Ciudades de un estado
// @Tags         catalog
// @Produce      json
// @Param        country  path  string  true  "País"
// @Param        state    path  string  true  "Estado"
// @Success      200  {array}   string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalog/countries/{country}/states/{state}/cities [get]
func (h *CatalogHandler) Cities(c *fiber.Ctx) error {
	cities := h.cat.Cities(param(c, "country"), param(c, "state"))
	if cities == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "estado no encontrado"})
	}
	return c.JSON(cities)
}

// param devuelve el parámetro de ruta decodificado ("Tamil%20Nadu" -> "Tamil Nadu").
func param(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}
