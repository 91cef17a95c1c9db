package backoffice

import (
	"strings"
	"time"

	"github.com/jhoicas/onboarding-api/internal/application/dto"
	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/review"
)

const dateLayout = "2006-01-02"

var knownStatuses = map[entity.OnboardingStatus]bool{
	entity.StatusPending:     true,
	entity.StatusUnderReview: true,
	entity.StatusApproved:    true,
	entity.StatusRejected:    true,
}

// ParseQuery convierte los query params del listado en review.Query.
// Una fecha "to" sin hora incluye el día completo.
func ParseQuery(in dto.ListOnboardingsRequest) (review.Query, error) {
	errs := domain.ValidationErrors{}
	q := review.Query{
		Search:        strings.TrimSpace(in.Search),
		BusinessTypes: splitCSV(in.BusinessType),
		Page:          in.Page,
		PageSize:      in.PageSize,
	}

	for _, s := range splitCSV(in.Status) {
		st := entity.OnboardingStatus(strings.ToLower(s))
		if !knownStatuses[st] {
			errs["status"] = "estado desconocido: " + s
			continue
		}
		q.Statuses = append(q.Statuses, st)
	}

	if in.From != "" {
		t, _, err := parseDate(in.From)
		if err != nil {
			errs["from"] = "fecha inválida (use 2006-01-02 o RFC3339)"
		} else {
			q.From = &t
		}
	}
	if in.To != "" {
		t, dateOnly, err := parseDate(in.To)
		if err != nil {
			errs["to"] = "fecha inválida (use 2006-01-02 o RFC3339)"
		} else {
			if dateOnly {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			q.To = &t
		}
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		errs["to"] = "debe ser posterior a from"
	}

	if in.SortBy != "" {
		f := review.SortField(strings.ToLower(in.SortBy))
		if !review.ValidSortField(f) {
			errs["sort_by"] = "campo de orden desconocido: " + in.SortBy
		}
		q.SortBy = f
	}
	switch strings.ToLower(in.Order) {
	case "", "asc":
	case "desc":
		q.Desc = true
	default:
		errs["order"] = "use asc o desc"
	}
	if in.PageSize < 0 || in.PageSize > review.MaxPageSize {
		errs["page_size"] = "fuera de rango (1-100)"
	}

	if len(errs) > 0 {
		return review.Query{}, errs
	}
	return q, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
