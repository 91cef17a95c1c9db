// Package memory implementa los puertos de persistencia en memoria (DB_DRIVER=memory y tests).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/repository"
	"github.com/jhoicas/onboarding-api/internal/domain/review"
)

var _ repository.OnboardingRepository = (*OnboardingRepo)(nil)

// OnboardingRepo guarda copias de los registros; nunca entrega punteros internos.
type OnboardingRepo struct {
	mu      sync.RWMutex
	records map[string]*entity.OnboardingRecord
}

// NewOnboardingRepository construye el repositorio vacío.
func NewOnboardingRepository() *OnboardingRepo {
	return &OnboardingRepo{records: make(map[string]*entity.OnboardingRecord)}
}

// Create persiste una solicitud nueva.
func (r *OnboardingRepo) Create(_ context.Context, rec *entity.OnboardingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; ok {
		return fmt.Errorf("%w: solicitud %s", domain.ErrDuplicate, rec.ID)
	}
	r.records[rec.ID] = cloneRecord(rec)
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *OnboardingRepo) GetByID(_ context.Context, id string) (*entity.OnboardingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

// ListAll lista todas las solicitudes, más recientes primero.
func (r *OnboardingRepo) ListAll(_ context.Context) ([]*entity.OnboardingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*entity.OnboardingRecord, 0, len(r.records))
	for _, rec := range r.records {
		list = append(list, cloneRecord(rec))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].SubmissionDate.After(list[j].SubmissionDate)
	})
	return list, nil
}

// UpdateStatus aplica el cambio bajo el lock de escritura: la comprobación del estado
// y la escritura son una sola operación.
func (r *OnboardingRepo) UpdateStatus(_ context.Context, id string, change entity.StatusChange) (*entity.OnboardingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := cloneRecord(rec)
	if err := review.ApplyChange(next, change); err != nil {
		return nil, err
	}
	r.records[id] = next
	return cloneRecord(next), nil
}

// AddDocument agrega metadatos de un documento.
func (r *OnboardingRepo) AddDocument(_ context.Context, id string, doc entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Documents = append(rec.Documents, doc)
	return nil
}

// SetDocumentVerified marca o desmarca un documento.
func (r *OnboardingRepo) SetDocumentVerified(_ context.Context, id, docID string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range rec.Documents {
		if rec.Documents[i].ID == docID {
			rec.Documents[i].Verified = verified
			return nil
		}
	}
	return domain.ErrNotFound
}

func cloneRecord(rec *entity.OnboardingRecord) *entity.OnboardingRecord {
	c := *rec
	c.Services = append([]string(nil), rec.Services...)
	c.Pricing.Breakdown = append([]entity.ServicePrice(nil), rec.Pricing.Breakdown...)
	c.Documents = append([]entity.Document(nil), rec.Documents...)
	if rec.ProcessedDate != nil {
		t := *rec.ProcessedDate
		c.ProcessedDate = &t
	}
	return &c
}
