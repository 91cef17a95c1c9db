package repository

import (
	"context"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// OnboardingRepository puerto de persistencia de solicitudes enviadas.
// Los registros no se borran.
type OnboardingRepository interface {
	Create(ctx context.Context, rec *entity.OnboardingRecord) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.OnboardingRecord, error)
	ListAll(ctx context.Context) ([]*entity.OnboardingRecord, error)
	// UpdateStatus aplica el cambio solo si el estado actual está en change.From, en una sola
	// operación atómica. Devuelve el registro actualizado o *domain.TransitionError si no aplicó.
	UpdateStatus(ctx context.Context, id string, change entity.StatusChange) (*entity.OnboardingRecord, error)
	AddDocument(ctx context.Context, id string, doc entity.Document) error
	SetDocumentVerified(ctx context.Context, id, docID string, verified bool) error
}
