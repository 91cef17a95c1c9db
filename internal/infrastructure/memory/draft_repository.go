package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/repository"
)

var _ repository.DraftRepository = (*DraftRepo)(nil)

// DraftRepo borradores del asistente en memoria.
type DraftRepo struct {
	mu     sync.RWMutex
	drafts map[string]*entity.Draft
}

// NewDraftRepository construye el repositorio vacío.
func NewDraftRepository() *DraftRepo {
	return &DraftRepo{drafts: make(map[string]*entity.Draft)}
}

func (r *DraftRepo) Create(_ context.Context, d *entity.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drafts[d.ID]; ok {
		return fmt.Errorf("%w: borrador %s", domain.ErrDuplicate, d.ID)
	}
	r.drafts[d.ID] = cloneDraft(d)
	return nil
}

func (r *DraftRepo) Get(_ context.Context, id string) (*entity.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drafts[id]
	if !ok {
		return nil, nil
	}
	return cloneDraft(d), nil
}

func (r *DraftRepo) Save(_ context.Context, d *entity.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drafts[d.ID]; !ok {
		return domain.ErrNotFound
	}
	r.drafts[d.ID] = cloneDraft(d)
	return nil
}

func (r *DraftRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, id)
	return nil
}

func (r *DraftRepo) PurgeOlderThan(_ context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, d := range r.drafts {
		if d.UpdatedAt.Before(before) {
			delete(r.drafts, id)
			n++
		}
	}
	return n, nil
}

func cloneDraft(d *entity.Draft) *entity.Draft {
	c := *d
	c.Data.Services = append([]string(nil), d.Data.Services...)
	return &c
}
