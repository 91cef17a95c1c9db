// Package review contiene la lógica pura del panel de revisión: filtro, orden y paginación
// de solicitudes, y las transiciones de estado aprobar/rechazar.
package review

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// SortField clave de ordenación del listado.
type SortField string

const (
	SortByCompanyName    SortField = "company_name"
	SortBySubmissionDate SortField = "submission_date"
	SortByStatus         SortField = "status"
	SortByBusinessType   SortField = "business_type"
)

// Tamaños de página.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// statusOrder orden del enum para ordenar por estado.
var statusOrder = map[entity.OnboardingStatus]int{
	entity.StatusPending:     0,
	entity.StatusUnderReview: 1,
	entity.StatusApproved:    2,
	entity.StatusRejected:    3,
}

// ValidSortField informa si f es una clave de ordenación conocida.
func ValidSortField(f SortField) bool {
	switch f {
	case SortByCompanyName, SortBySubmissionDate, SortByStatus, SortByBusinessType:
		return true
	}
	return false
}

// Query filtros, orden y página del listado. Los campos vacíos no filtran.
type Query struct {
	Statuses      []entity.OnboardingStatus
	From          *time.Time
	To            *time.Time
	BusinessTypes []string
	Search        string
	SortBy        SortField
	Desc          bool
	Page          int
	PageSize      int
}

// Page ventana de resultados. Total es la cantidad filtrada, no la paginada.
type Page struct {
	Items      []*entity.OnboardingRecord
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Apply filtra, ordena y pagina. No modifica records.
func Apply(records []*entity.OnboardingRecord, q Query) Page {
	filtered := Filter(records, q)
	if q.SortBy != "" {
		Sort(filtered, q.SortBy, q.Desc)
	}
	return Paginate(filtered, q.Page, q.PageSize)
}

// Filter aplica el AND de todos los filtros presentes y devuelve un slice nuevo.
func Filter(records []*entity.OnboardingRecord, q Query) []*entity.OnboardingRecord {
	statuses := make(map[entity.OnboardingStatus]bool, len(q.Statuses))
	for _, s := range q.Statuses {
		statuses[s] = true
	}
	types := make(map[string]bool, len(q.BusinessTypes))
	for _, t := range q.BusinessTypes {
		types[strings.ToLower(t)] = true
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]*entity.OnboardingRecord, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if len(statuses) > 0 && !statuses[r.Status] {
			continue
		}
		if q.From != nil && r.SubmissionDate.Before(*q.From) {
			continue
		}
		if q.To != nil && r.SubmissionDate.After(*q.To) {
			continue
		}
		if len(types) > 0 && !types[strings.ToLower(r.IndustryType)] {
			continue
		}
		if search != "" && !matches(r, search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r *entity.OnboardingRecord, needle string) bool {
	for _, hay := range []string{r.CompanyName, r.CompanyEmail, r.ContactName(), r.IndustryType} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// Sort ordena in situ de forma estable. Los textos se comparan con collation inglesa sin mayúsculas.
func Sort(records []*entity.OnboardingRecord, field SortField, desc bool) {
	col := collate.New(language.English, collate.IgnoreCase)
	var less func(a, b *entity.OnboardingRecord) int
	switch field {
	case SortByCompanyName:
		less = func(a, b *entity.OnboardingRecord) int { return col.CompareString(a.CompanyName, b.CompanyName) }
	case SortByBusinessType:
		less = func(a, b *entity.OnboardingRecord) int { return col.CompareString(a.IndustryType, b.IndustryType) }
	case SortBySubmissionDate:
		less = func(a, b *entity.OnboardingRecord) int { return a.SubmissionDate.Compare(b.SubmissionDate) }
	case SortByStatus:
		less = func(a, b *entity.OnboardingRecord) int { return statusOrder[a.Status] - statusOrder[b.Status] }
	default:
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		c := less(records[i], records[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// Paginate recorta la ventana pedida. page < 1 se trata como 1; una página pasada del final
// devuelve Items vacío con el Total real.
func Paginate(records []*entity.OnboardingRecord, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(records)
	start := (page - 1) * size
	items := []*entity.OnboardingRecord{}
	if start < total {
		end := start + size
		if end > total {
			end = total
		}
		items = records[start:end]
	}
	return Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}
}

// CountByStatus cuenta solicitudes por estado (para el resumen del panel).
func CountByStatus(records []*entity.OnboardingRecord) map[entity.OnboardingStatus]int {
	out := map[entity.OnboardingStatus]int{
		entity.StatusPending:     0,
		entity.StatusUnderReview: 0,
		entity.StatusApproved:    0,
		entity.StatusRejected:    0,
	}
	for _, r := range records {
		if r != nil {
			out[r.Status]++
		}
	}
	return out
}
