package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/pricing"
)

func newCalc() *pricing.Calculator {
	return pricing.NewCalculator(catalog.Default())
}

// 50 empleados, inventory + accounts, trimestral (5 %):
// inventory = max(150×50, 2500) = 7500; accounts = max(200×50, 3500) = 10000.
func TestComputeQuote_EscenarioTrimestral(t *testing.T) {
	q, ok := newCalc().ComputeQuote(50, []string{"inventory", "accounts"}, "quarterly")
	require.True(t, ok)
	require.NotNil(t, q)

	assert.True(t, q.BasePrice.Equal(decimal.NewFromInt(17500)), "base: %s", q.BasePrice)
	assert.True(t, q.Discount.Equal(decimal.NewFromInt(875)), "descuento: %s", q.Discount)
	assert.True(t, q.FinalPrice.Equal(decimal.NewFromInt(16625)), "final: %s", q.FinalPrice)

	require.Len(t, q.Breakdown, 2)
	assert.Equal(t, "inventory", q.Breakdown[0].Service)
	assert.True(t, q.Breakdown[0].Price.Equal(decimal.NewFromInt(7500)))
	assert.True(t, q.Breakdown[1].Price.Equal(decimal.NewFromInt(10000)))

	// Vista previa: 16625 × 3 = 49875; GST 18 % = 8977.5 → 8978
	assert.Equal(t, 3, q.Months)
	assert.True(t, q.PlanTotal.Equal(decimal.NewFromInt(49875)))
	assert.True(t, q.GSTAmount.Equal(decimal.NewFromInt(8978)))
	assert.True(t, q.TotalWithGST.Equal(decimal.NewFromInt(58853)))
}

func TestComputeQuote_AplicaPrecioMinimo(t *testing.T) {
	q, ok := newCalc().ComputeQuote(5, []string{"inventory"}, "monthly")
	require.True(t, ok)
	// 150 × 5 = 750 < 2500
	assert.True(t, q.BasePrice.Equal(decimal.NewFromInt(2500)))
	assert.True(t, q.Discount.IsZero())
	assert.True(t, q.FinalPrice.Equal(q.BasePrice))
}

func TestComputeQuote_NoCalculableConEntradaParcial(t *testing.T) {
	calc := newCalc()
	cases := []struct {
		name      string
		employees int
		services  []string
		plan      string
	}{
		{"sin empleados", 0, []string{"inventory"}, "monthly"},
		{"sin servicios", 10, nil, "monthly"},
		{"sin plan", 10, []string{"hrms"}, ""},
		{"plan desconocido", 10, []string{"hrms"}, "weekly"},
		{"servicio desconocido", 10, []string{"crm"}, "monthly"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, ok := calc.ComputeQuote(tc.employees, tc.services, tc.plan)
			assert.False(t, ok)
			assert.Nil(t, q)
		})
	}
}

func TestComputeQuote_ServicioDuplicadoCuentaUnaVez(t *testing.T) {
	q, ok := newCalc().ComputeQuote(100, []string{"hrms", "hrms"}, "monthly")
	require.True(t, ok)
	assert.Len(t, q.Breakdown, 1)
	assert.True(t, q.BasePrice.Equal(decimal.NewFromInt(10000)))
}

// finalPrice <= basePrice y finalPrice = basePrice − discount para cualquier entrada válida.
func TestComputeQuote_FinalNuncaSuperaBase(t *testing.T) {
	calc := newCalc()
	combos := [][]string{
		{"inventory"}, {"accounts"}, {"hrms"},
		{"inventory", "accounts"}, {"inventory", "hrms"}, {"accounts", "hrms"},
		{"inventory", "accounts", "hrms"},
	}
	for _, plan := range catalog.Default().Plans {
		for _, services := range combos {
			for _, employees := range []int{1, 7, 23, 50, 999, 10000} {
				q, ok := calc.ComputeQuote(employees, services, plan.ID)
				require.True(t, ok)
				assert.True(t, q.FinalPrice.LessThanOrEqual(q.BasePrice),
					"plan=%s services=%v employees=%d", plan.ID, services, employees)
				assert.True(t, q.FinalPrice.Equal(q.BasePrice.Sub(q.Discount)))
				assert.True(t, q.Discount.Equal(q.Discount.Round(0)), "el descuento se redondea a rupias")
			}
		}
	}
}
