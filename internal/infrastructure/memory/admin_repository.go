package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/repository"
)

var _ repository.AdminRepository = (*AdminRepo)(nil)

// AdminRepo administradores en memoria. username y email son únicos sin distinguir mayúsculas.
type AdminRepo struct {
	mu     sync.RWMutex
	admins map[string]*entity.Admin
}

// NewAdminRepository construye el repositorio vacío.
func NewAdminRepository() *AdminRepo {
	return &AdminRepo{admins: make(map[string]*entity.Admin)}
}

func (r *AdminRepo) Create(_ context.Context, a *entity.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.admins {
		if strings.EqualFold(e.Username, a.Username) || strings.EqualFold(e.Email, a.Email) {
			return domain.ErrDuplicate
		}
	}
	c := *a
	r.admins[a.ID] = &c
	return nil
}

func (r *AdminRepo) GetByID(_ context.Context, id string) (*entity.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (r *AdminRepo) FindByLogin(_ context.Context, login string) (*entity.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.admins {
		if strings.EqualFold(a.Username, login) || strings.EqualFold(a.Email, login) {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (r *AdminRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.admins), nil
}
