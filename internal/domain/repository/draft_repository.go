package repository

import (
	"context"
	"time"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// DraftRepository puerto de persistencia de asistentes en curso.
type DraftRepository interface {
	Create(ctx context.Context, d *entity.Draft) error
	// Get devuelve (nil, nil) si no existe.
	Get(ctx context.Context, id string) (*entity.Draft, error)
	Save(ctx context.Context, d *entity.Draft) error
	Delete(ctx context.Context, id string) error
	// PurgeOlderThan borra borradores sin actividad desde before y devuelve cuántos.
	PurgeOlderThan(ctx context.Context, before time.Time) (int, error)
}
