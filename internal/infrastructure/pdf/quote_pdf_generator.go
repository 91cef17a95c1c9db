// Package pdf genera la cotización imprimible del asistente de alta con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + GSTIN     │  COTIZACIÓN + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONTACTO: Nombre / Email / Móvil                            │
//	│  DIRECCIÓN: Dirección, ciudad, estado, país                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Servicio | Empleados | Precio mensual                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Base / Descuento / Mensual / Plan / GST / Total    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/onboarding-api/internal/application/ports"
	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.QuotePDFGenerator = (*QuotePDFGenerator)(nil)

// QuotePDFGenerator implementa ports.QuotePDFGenerator usando Maroto v2.
type QuotePDFGenerator struct {
	cat *catalog.Catalog
	now func() time.Time
}

// NewQuotePDFGenerator construye el generador. El catálogo aporta los nombres de servicio y plan.
func NewQuotePDFGenerator(cat *catalog.Catalog) *QuotePDFGenerator {
	return &QuotePDFGenerator{cat: cat, now: time.Now}
}

// GenerateQuotePDF genera el PDF y devuelve sus bytes.
func (g *QuotePDFGenerator) GenerateQuotePDF(
	_ context.Context,
	data entity.OnboardingData,
	quote *entity.PricingDetails,
) ([]byte, error) {
	if quote == nil {
		return nil, fmt.Errorf("pdf: cotización vacía")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Quotation", true).
		WithAuthor(nonEmpty(data.CompanyName, "-"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(contactRow(data))
	m.AddRows(addressRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range g.tableDetailRows(data.Employees, quote) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(data.PlanDuration, quote))
	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Prices in INR. The quotation is indicative until the application is approved.", props.Text{
			Size: 7, Color: colorGray, Top: 2,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa + GSTIN (izq) y título + fecha (der).
func headerRow(data entity.OnboardingData, now time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(data.CompanyName, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("GSTIN: "+nonEmpty(data.CompanyGST, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("QUOTATION", props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Date: "+now.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func contactRow(data entity.OnboardingData) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("CONTACT", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Email: %s   |   Mobile: %s",
				nonEmpty(data.ContactName(), "-"),
				nonEmpty(data.CompanyEmail, "-"),
				nonEmpty(data.CompanyMobile, "-"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func addressRow(data entity.OnboardingData) core.Row {
	parts := make([]string, 0, 5)
	for _, p := range []string{data.CompanyAddress, data.City, data.State, data.Country, data.Pincode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ADDRESS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(strings.Join(parts, ", "), "-"), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Service", 6, align.Left),
		h("Employees", 2, align.Center),
		h("Monthly price", 4, align.Right),
	)
}

// tableDetailRows: una fila por servicio del desglose.
func (g *QuotePDFGenerator) tableDetailRows(employees int, quote *entity.PricingDetails) []core.Row {
	result := make([]core.Row, 0, len(quote.Breakdown))
	for _, sp := range quote.Breakdown {
		name := sp.Service
		if svc, ok := g.cat.Service(sp.Service); ok {
			name = svc.Name
		}
		result = append(result, row.New(7).Add(
			col.New(6).Add(text.New(name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(strconv.Itoa(employees), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New("Rs. "+formatMoney(sp.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *QuotePDFGenerator) totalsRow(planID string, quote *entity.PricingDetails) core.Row {
	planLabel := planID
	if p, ok := g.cat.Plan(planID); ok {
		planLabel = p.Label
	}

	labels := []string{
		"Base price (monthly):",
		fmt.Sprintf("Discount (%s%%):", quote.DiscountPercent.String()),
		"Final price (monthly):",
		fmt.Sprintf("Plan total (%s, %d months):", planLabel, quote.Months),
		fmt.Sprintf("GST (%s%%):", gstPercent(quote)),
		"TOTAL:",
	}
	values := []string{
		formatMoney(quote.BasePrice),
		"- " + formatMoney(quote.Discount),
		formatMoney(quote.FinalPrice),
		formatMoney(quote.PlanTotal),
		formatMoney(quote.GSTAmount),
		formatMoney(quote.TotalWithGST),
	}

	left := col.New(7)
	right := col.New(5)
	for i := range labels {
		top := float64(i * 6)
		lp := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}
		vp := props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}
		if i == len(labels)-1 {
			lp.Color, vp.Color, vp.Style = colorPrimary, colorPrimary, fontstyle.Bold
		}
		left.Add(text.New(labels[i], lp))
		right.Add(text.New("Rs. "+values[i], vp))
	}
	return row.New(float64(len(labels)*6+4)).Add(left, right)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// gstPercent porcentaje efectivo de GST sobre el total del plan.
func gstPercent(q *entity.PricingDetails) string {
	if q.PlanTotal.IsZero() {
		return "0"
	}
	return q.GSTAmount.Mul(decimal.NewFromInt(100)).Div(q.PlanTotal).Round(0).String()
}

// formatMoney agrupa miles al estilo indio (últimos tres dígitos, luego de a dos).
// Ej: 17500 → "17,500", 1234567 → "12,34,567"
func formatMoney(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	n := len(s)
	if n > 3 {
		head, tail := s[:n-3], s[n-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		s = strings.Join(groups, ",") + "," + tail
	}
	if neg {
		return "-" + s
	}
	return s
}
