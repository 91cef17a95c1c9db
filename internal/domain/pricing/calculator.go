package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// GSTPercent tarifa de GST aplicada sobre el total del plan.
var GSTPercent = decimal.NewFromInt(18)

var hundred = decimal.NewFromInt(100)

// Calculator calcula cotizaciones a partir de las tarifas del catálogo (servicio de dominio, sin efectos).
type Calculator struct {
	cat *catalog.Catalog
}

// NewCalculator construye el calculador sobre un catálogo.
func NewCalculator(cat *catalog.Catalog) *Calculator {
	return &Calculator{cat: cat}
}

// ServicePrice precio mensual de un servicio: max(tarifa × empleados, mínimo).
func ServicePrice(svc catalog.Service, employees int) decimal.Decimal {
	price := decimal.NewFromInt(svc.RatePerEmployee).Mul(decimal.NewFromInt(int64(employees)))
	floor := decimal.NewFromInt(svc.MinimumPrice)
	if price.LessThan(floor) {
		return floor
	}
	return price
}

// ComputeQuote devuelve la cotización o (nil, false) si aún no es calculable:
// faltan empleados, servicios o plan, o alguno no existe en el catálogo.
//
//	basePrice  = Σ max(tarifa × empleados, mínimo)
//	discount   = round(basePrice × descuento% / 100)
//	finalPrice = basePrice − discount            (mensual, sin GST)
//	planTotal  = finalPrice × meses
//	gstAmount  = round(planTotal × 18 / 100)
func (c *Calculator) ComputeQuote(employees int, services []string, planID string) (*entity.PricingDetails, bool) {
	if employees <= 0 || len(services) == 0 || planID == "" {
		return nil, false
	}
	plan, ok := c.cat.Plan(planID)
	if !ok {
		return nil, false
	}

	seen := make(map[string]bool, len(services))
	breakdown := make([]entity.ServicePrice, 0, len(services))
	base := decimal.Zero
	for _, id := range services {
		if seen[id] {
			continue
		}
		seen[id] = true
		svc, ok := c.cat.Service(id)
		if !ok {
			return nil, false
		}
		p := ServicePrice(svc, employees)
		breakdown = append(breakdown, entity.ServicePrice{Service: id, Price: p})
		base = base.Add(p)
	}

	pct := decimal.NewFromInt(int64(plan.DiscountPercent))
	discount := base.Mul(pct).Div(hundred).Round(0)
	final := base.Sub(discount)
	planTotal := final.Mul(decimal.NewFromInt(int64(plan.Months)))
	gst := planTotal.Mul(GSTPercent).Div(hundred).Round(0)

	return &entity.PricingDetails{
		BasePrice:       base,
		DiscountPercent: pct,
		Discount:        discount,
		FinalPrice:      final,
		Breakdown:       breakdown,
		Months:          plan.Months,
		PlanTotal:       planTotal,
		GSTAmount:       gst,
		TotalWithGST:    planTotal.Add(gst),
	}, true
}
