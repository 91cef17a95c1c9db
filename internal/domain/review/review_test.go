package review_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/review"
)

var t0 = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func rec(id, name string, status entity.OnboardingStatus, industry string, day int) *entity.OnboardingRecord {
	r := &entity.OnboardingRecord{
		ID:             id,
		Status:         status,
		SubmissionDate: t0.AddDate(0, 0, day),
	}
	r.CompanyName = name
	r.CompanyEmail = "contact@" + id + ".in"
	r.FirstName = "Ravi"
	r.LastName = "Kumar" + id
	r.IndustryType = industry
	return r
}

func fixtures() []*entity.OnboardingRecord {
	return []*entity.OnboardingRecord{
		rec("a1", "zenith Mills", entity.StatusPending, "textile", 0),
		rec("a2", "Alpha Retail", entity.StatusApproved, "retail", 3),
		rec("a3", "beta Logistics", entity.StatusRejected, "logistics", 1),
		rec("a4", "Gamma Textiles", entity.StatusUnderReview, "textile", 5),
		rec("a5", "Delta Foods", entity.StatusPending, "hospitality", 2),
	}
}

func ids(rs []*entity.OnboardingRecord) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter_PorEstadoCierre(t *testing.T) {
	set := []entity.OnboardingStatus{entity.StatusPending, entity.StatusUnderReview}
	out := review.Filter(fixtures(), review.Query{Statuses: set})
	require.Len(t, out, 3)
	for _, r := range out {
		assert.Contains(t, set, r.Status)
	}
}

func TestFilter_CombinaFiltrosConAND(t *testing.T) {
	from := t0.AddDate(0, 0, 1)
	to := t0.AddDate(0, 0, 5)
	out := review.Filter(fixtures(), review.Query{
		From:          &from,
		To:            &to,
		BusinessTypes: []string{"textile"},
	})
	assert.Equal(t, []string{"a4"}, ids(out), "a1 es textile pero queda fuera del rango")
}

func TestFilter_BusquedaSinMayusculas(t *testing.T) {
	cases := map[string][]string{
		"MILLS":         {"a1"},          // companyName
		"contact@a3":    {"a3"},          // email
		"ravi kumara5":  {"a5"},          // persona de contacto
		"HOSPITAL":      {"a5"},          // businessType
		"no-existe-xyz": {},
	}
	for q, want := range cases {
		out := review.Filter(fixtures(), review.Query{Search: q})
		assert.ElementsMatch(t, want, ids(out), "búsqueda %q", q)
	}
}

func TestSort_NombreConCollation(t *testing.T) {
	rs := fixtures()
	review.Sort(rs, review.SortByCompanyName, false)
	assert.Equal(t, []string{"a2", "a3", "a5", "a4", "a1"}, ids(rs), "sin distinguir mayúsculas")
}

func TestSort_EstadoOrdenDelEnum(t *testing.T) {
	rs := fixtures()
	review.Sort(rs, review.SortByStatus, false)
	assert.Equal(t, []string{"a1", "a5", "a4", "a2", "a3"}, ids(rs), "estable: a1 antes que a5")
}

func TestSort_FechaAscYDescSonInversos(t *testing.T) {
	asc := fixtures()
	review.Sort(asc, review.SortBySubmissionDate, false)
	desc := fixtures()
	review.Sort(desc, review.SortBySubmissionDate, true)

	a := ids(asc)
	d := ids(desc)
	require.Len(t, d, len(a))
	for i := range a {
		assert.Equal(t, a[i], d[len(d)-1-i])
	}
	assert.Equal(t, []string{"a1", "a3", "a5", "a2", "a4"}, a)
}

func TestPaginate_TotalEsElFiltrado(t *testing.T) {
	var rs []*entity.OnboardingRecord
	for i := 0; i < 23; i++ {
		rs = append(rs, rec(fmt.Sprintf("r%02d", i), "Co", entity.StatusPending, "retail", i))
	}

	p := review.Apply(rs, review.Query{SortBy: review.SortBySubmissionDate, Page: 3})
	assert.Equal(t, 23, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, review.DefaultPageSize, p.PageSize)
	assert.Equal(t, []string{"r20", "r21", "r22"}, ids(p.Items))

	p = review.Paginate(rs, 0, 5)
	assert.Equal(t, 1, p.Page)
	assert.Len(t, p.Items, 5)

	p = review.Paginate(rs, 9, 5)
	assert.Empty(t, p.Items)
	assert.Equal(t, 23, p.Total)

	p = review.Paginate(rs, 1, 1000)
	assert.Equal(t, review.MaxPageSize, p.PageSize)
}

func TestCountByStatus(t *testing.T) {
	c := review.CountByStatus(fixtures())
	assert.Equal(t, 2, c[entity.StatusPending])
	assert.Equal(t, 1, c[entity.StatusUnderReview])
	assert.Equal(t, 1, c[entity.StatusApproved])
	assert.Equal(t, 1, c[entity.StatusRejected])
}

func TestApprove_DesdeRechazadoFalla(t *testing.T) {
	r := rec("x", "X", entity.StatusRejected, "retail", 0)
	before := *r

	_, err := review.Approve(r, "ok", "admin-1", t0)
	var terr *domain.TransitionError
	require.True(t, errors.As(err, &terr))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, before, *r, "el registro no debe cambiar")
}

func TestApprove_AplicaCambio(t *testing.T) {
	r := rec("x", "X", entity.StatusUnderReview, "retail", 0)
	ch, err := review.Approve(r, "  documentos ok ", "admin-1", t0)
	require.NoError(t, err)
	require.NoError(t, review.ApplyChange(r, ch))

	assert.Equal(t, entity.StatusApproved, r.Status)
	assert.Equal(t, "documentos ok", r.AdminNotes)
	assert.Equal(t, "admin-1", r.ProcessedBy)
	require.NotNil(t, r.ProcessedDate)
	assert.True(t, r.ProcessedDate.Equal(t0))

	assert.ErrorIs(t, review.ApplyChange(r, ch), domain.ErrInvalidTransition, "approved es terminal")
}

func TestReject_DetallesObligatoriosNoMuta(t *testing.T) {
	cat := catalog.Default()
	for _, details := range []string{"", "corto", "  123456789  "} {
		r := rec("x", "X", entity.StatusPending, "retail", 0)
		before := *r
		_, err := review.Reject(cat, r, "suspicious_activity", details, "", "admin-1", t0)
		require.Error(t, err, "detalles %q", details)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, before, *r)
	}
}

func TestReject_MotivoDesconocido(t *testing.T) {
	r := rec("x", "X", entity.StatusPending, "retail", 0)
	_, err := review.Reject(catalog.Default(), r, "no-existe", "", "", "admin-1", t0)
	var verr domain.ValidationErrors
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr, "reason_id")
}

func TestReject_OK(t *testing.T) {
	r := rec("x", "X", entity.StatusUnderReview, "retail", 0)
	ch, err := review.Reject(catalog.Default(), r, "other", "No coincide la razón social", "", "admin-2", t0)
	require.NoError(t, err)
	require.NoError(t, review.ApplyChange(r, ch))
	assert.Equal(t, entity.StatusRejected, r.Status)
	assert.Equal(t, "other", r.RejectionReason)
	assert.Equal(t, "No coincide la razón social", r.RejectionDetails)
}

func TestStartReview_SoloDesdePendiente(t *testing.T) {
	r := rec("x", "X", entity.StatusPending, "retail", 0)
	ch, err := review.StartReview(r, "admin-1", t0)
	require.NoError(t, err)
	require.NoError(t, review.ApplyChange(r, ch))
	assert.Equal(t, entity.StatusUnderReview, r.Status)
	assert.Nil(t, r.ProcessedDate, "empezar la revisión no cierra la solicitud")

	_, err = review.StartReview(r, "admin-1", t0)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
