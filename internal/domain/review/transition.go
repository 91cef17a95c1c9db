package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// MinRejectionDetails longitud mínima de los detalles cuando el motivo los exige.
const MinRejectionDetails = 10

// sources estados de origen permitidos por estado destino. approved y rejected son terminales.
var sources = map[entity.OnboardingStatus][]entity.OnboardingStatus{
	entity.StatusUnderReview: {entity.StatusPending},
	entity.StatusApproved:    {entity.StatusPending, entity.StatusUnderReview},
	entity.StatusRejected:    {entity.StatusPending, entity.StatusUnderReview},
}

// Sources estados desde los que se puede llegar a to.
func Sources(to entity.OnboardingStatus) []entity.OnboardingStatus {
	return sources[to]
}

// CanTransition informa si from → to está permitido.
func CanTransition(from, to entity.OnboardingStatus) bool {
	for _, s := range sources[to] {
		if s == from {
			return true
		}
	}
	return false
}

func checkTransition(rec *entity.OnboardingRecord, to entity.OnboardingStatus) error {
	if !CanTransition(rec.Status, to) {
		return &domain.TransitionError{From: string(rec.Status), To: string(to)}
	}
	return nil
}

// StartReview pending → under_review.
func StartReview(rec *entity.OnboardingRecord, adminID string, now time.Time) (entity.StatusChange, error) {
	if err := checkTransition(rec, entity.StatusUnderReview); err != nil {
		return entity.StatusChange{}, err
	}
	return entity.StatusChange{
		From:        Sources(entity.StatusUnderReview),
		To:          entity.StatusUnderReview,
		ProcessedBy: adminID,
		UpdatedAt:   now,
	}, nil
}

// Approve pending|under_review → approved.
func Approve(rec *entity.OnboardingRecord, notes, adminID string, now time.Time) (entity.StatusChange, error) {
	if err := checkTransition(rec, entity.StatusApproved); err != nil {
		return entity.StatusChange{}, err
	}
	ch := entity.StatusChange{
		From:          Sources(entity.StatusApproved),
		To:            entity.StatusApproved,
		ProcessedBy:   adminID,
		ProcessedDate: &now,
		UpdatedAt:     now,
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		ch.AdminNotes = &notes
	}
	return ch, nil
}

// ValidateRejection el motivo debe existir en la taxonomía; si exige detalles, deben tener
// al menos MinRejectionDetails caracteres.
func ValidateRejection(cat *catalog.Catalog, reasonID, details string) error {
	reason, ok := cat.RejectionReason(reasonID)
	if !ok {
		return domain.ValidationErrors{"reason_id": fmt.Sprintf("motivo de rechazo desconocido: %q", reasonID)}
	}
	if reason.RequiresDetails && len([]rune(strings.TrimSpace(details))) < MinRejectionDetails {
		return domain.ValidationErrors{
			"details": fmt.Sprintf("el motivo %q exige detalles de al menos %d caracteres", reason.Label, MinRejectionDetails),
		}
	}
	return nil
}

// Reject pending|under_review → rejected. Valida el motivo antes de construir el cambio.
func Reject(cat *catalog.Catalog, rec *entity.OnboardingRecord, reasonID, details, notes, adminID string, now time.Time) (entity.StatusChange, error) {
	if err := ValidateRejection(cat, reasonID, details); err != nil {
		return entity.StatusChange{}, err
	}
	if err := checkTransition(rec, entity.StatusRejected); err != nil {
		return entity.StatusChange{}, err
	}
	ch := entity.StatusChange{
		From:             Sources(entity.StatusRejected),
		To:               entity.StatusRejected,
		RejectionReason:  reasonID,
		RejectionDetails: strings.TrimSpace(details),
		ProcessedBy:      adminID,
		ProcessedDate:    &now,
		UpdatedAt:        now,
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		ch.AdminNotes = &notes
	}
	return ch, nil
}

// ApplyChange aplica ch sobre rec si el estado actual lo permite (actualización condicional).
// Es la versión en memoria del UPDATE ... WHERE status = ANY(from) de PostgreSQL.
func ApplyChange(rec *entity.OnboardingRecord, ch entity.StatusChange) error {
	allowed := false
	for _, s := range ch.From {
		if rec.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return &domain.TransitionError{From: string(rec.Status), To: string(ch.To)}
	}
	rec.Status = ch.To
	if ch.AdminNotes != nil {
		rec.AdminNotes = *ch.AdminNotes
	}
	if ch.RejectionReason != "" {
		rec.RejectionReason = ch.RejectionReason
		rec.RejectionDetails = ch.RejectionDetails
	}
	if ch.ProcessedBy != "" {
		rec.ProcessedBy = ch.ProcessedBy
	}
	if ch.ProcessedDate != nil {
		t := *ch.ProcessedDate
		rec.ProcessedDate = &t
	}
	rec.UpdatedAt = ch.UpdatedAt
	return nil
}
