package repository

import (
	"context"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// AdminRepository define el puerto de persistencia para administradores.
type AdminRepository interface {
	// Create devuelve domain.ErrDuplicate si username o email ya existen.
	Create(ctx context.Context, a *entity.Admin) error
	GetByID(ctx context.Context, id string) (*entity.Admin, error)
	// FindByLogin busca por username o email. (nil, nil) si no existe.
	FindByLogin(ctx context.Context, login string) (*entity.Admin, error)
	Count(ctx context.Context) (int, error)
}
