// Package backoffice implementa el panel de revisión: listado, resumen, cambios de estado
// y documentos de las solicitudes de alta.
package backoffice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/onboarding-api/internal/application/dto"
	"github.com/jhoicas/onboarding-api/internal/application/ports"
	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/repository"
	"github.com/jhoicas/onboarding-api/internal/domain/review"
	"github.com/jhoicas/onboarding-api/pkg/logger"
)

const sideEffectTimeout = 10 * time.Second

// StatusChangedEvent payload de onboarding.status_changed.
type StatusChangedEvent struct {
	OnboardingID string                  `json:"onboarding_id"`
	From         entity.OnboardingStatus `json:"from"`
	To           entity.OnboardingStatus `json:"to"`
	ProcessedBy  string                  `json:"processed_by"`
	Reason       string                  `json:"rejection_reason,omitempty"`
}

// ReviewUseCase casos de uso del panel de administración.
type ReviewUseCase struct {
	repo     repository.OnboardingRepository
	cat      *catalog.Catalog
	notifier ports.Notifier
	events   ports.EventPublisher
	log      *logger.Logger
	now      func() time.Time
	inflight sync.Map // id -> struct{}: una acción de estado a la vez por solicitud
}

// NewReviewUseCase construye el caso de uso.
func NewReviewUseCase(
	repo repository.OnboardingRepository,
	cat *catalog.Catalog,
	notifier ports.Notifier,
	events ports.EventPublisher,
	log *logger.Logger,
) *ReviewUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReviewUseCase{repo: repo, cat: cat, notifier: notifier, events: events, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReviewUseCase) WithClock(now func() time.Time) *ReviewUseCase {
	uc.now = now
	return uc
}

// List filtra, ordena y pagina las solicitudes.
func (uc *ReviewUseCase) List(ctx context.Context, q review.Query) (*dto.OnboardingPageResponse, error) {
	all, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, &domain.ExternalCallError{Op: "listar solicitudes", Err: err}
	}
	page := review.Apply(all, q)
	items := make([]dto.OnboardingResponse, 0, len(page.Items))
	for _, r := range page.Items {
		items = append(items, *dto.NewOnboardingResponse(r))
	}
	return &dto.OnboardingPageResponse{
		Items: items,
		PageResponse: dto.PageResponse{
			Page:       page.Page,
			PageSize:   page.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	}, nil
}

// Summary contadores por estado.
func (uc *ReviewUseCase) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	all, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, &domain.ExternalCallError{Op: "listar solicitudes", Err: err}
	}
	c := review.CountByStatus(all)
	return &dto.SummaryResponse{
		Total:       len(all),
		Pending:     c[entity.StatusPending],
		UnderReview: c[entity.StatusUnderReview],
		Approved:    c[entity.StatusApproved],
		Rejected:    c[entity.StatusRejected],
	}, nil
}

// Get devuelve una solicitud o domain.ErrNotFound.
func (uc *ReviewUseCase) Get(ctx context.Context, id string) (*dto.OnboardingResponse, error) {
	rec, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewOnboardingResponse(rec), nil
}

// StartReview pending → under_review.
func (uc *ReviewUseCase) StartReview(ctx context.Context, id, adminID string) (*dto.OnboardingResponse, error) {
	return uc.transition(ctx, id, func(rec *entity.OnboardingRecord, now time.Time) (entity.StatusChange, error) {
		return review.StartReview(rec, adminID, now)
	})
}

// Approve aprueba una solicitud pending o under_review.
func (uc *ReviewUseCase) Approve(ctx context.Context, id, adminID string, in dto.ApproveRequest) (*dto.OnboardingResponse, error) {
	return uc.transition(ctx, id, func(rec *entity.OnboardingRecord, now time.Time) (entity.StatusChange, error) {
		return review.Approve(rec, in.AdminNotes, adminID, now)
	})
}

// Reject rechaza con un motivo de la taxonomía. Los detalles se validan antes de tocar el registro.
func (uc *ReviewUseCase) Reject(ctx context.Context, id, adminID string, in dto.RejectRequest) (*dto.OnboardingResponse, error) {
	if err := review.ValidateRejection(uc.cat, strings.TrimSpace(in.ReasonID), in.Details); err != nil {
		return nil, err
	}
	return uc.transition(ctx, id, func(rec *entity.OnboardingRecord, now time.Time) (entity.StatusChange, error) {
		return review.Reject(uc.cat, rec, strings.TrimSpace(in.ReasonID), in.Details, in.AdminNotes, adminID, now)
	})
}

type changeBuilder func(rec *entity.OnboardingRecord, now time.Time) (entity.StatusChange, error)

// transition ejecuta un cambio de estado con guardia de acción en curso por solicitud.
// La actualización es condicional en el repositorio: si otro administrador cambió el estado
// entre la lectura y la escritura, devuelve *domain.TransitionError y nada cambia.
func (uc *ReviewUseCase) transition(ctx context.Context, id string, build changeBuilder) (*dto.OnboardingResponse, error) {
	if _, busy := uc.inflight.LoadOrStore(id, struct{}{}); busy {
		return nil, domain.ErrActionInProgress
	}
	defer uc.inflight.Delete(id)

	rec, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	change, err := build(rec, uc.now())
	if err != nil {
		return nil, err
	}
	updated, err := uc.repo.UpdateStatus(ctx, id, change)
	if err != nil {
		var terr *domain.TransitionError
		if errors.As(err, &terr) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		uc.log.Error().Err(err).Str("onboarding_id", id).Msg("no se pudo actualizar el estado")
		return nil, &domain.ExternalCallError{Op: "actualizar estado", Err: err}
	}

	uc.log.Info().
		Str("onboarding_id", id).
		Str("from", string(rec.Status)).
		Str("to", string(updated.Status)).
		Str("admin_id", updated.ProcessedBy).
		Msg("estado de solicitud actualizado")

	uc.afterTransition(ctx, rec.Status, updated)
	return dto.NewOnboardingResponse(updated), nil
}

func (uc *ReviewUseCase) afterTransition(ctx context.Context, from entity.OnboardingStatus, rec *entity.OnboardingRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		evt := ports.Event{
			Type:       ports.EventOnboardingStatusChanged,
			Key:        rec.ID,
			OccurredAt: rec.UpdatedAt,
			Payload: StatusChangedEvent{
				OnboardingID: rec.ID,
				From:         from,
				To:           rec.Status,
				ProcessedBy:  rec.ProcessedBy,
				Reason:       rec.RejectionReason,
			},
		}
		if err := uc.events.Publish(ctx, evt); err != nil {
			uc.log.Error().Err(err).Str("onboarding_id", rec.ID).Msg("no se pudo publicar el cambio de estado")
			return err
		}
		return nil
	})
	if rec.Status == entity.StatusApproved || rec.Status == entity.StatusRejected {
		g.Go(func() error {
			if err := uc.notifier.DecisionMade(ctx, rec); err != nil {
				uc.log.Error().Err(err).Str("onboarding_id", rec.ID).Msg("no se pudo notificar la decisión")
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ── Documentos ────────────────────────────────────────────────────────────────

// AddDocument registra los metadatos de un documento adjunto. Verified empieza en false.
func (uc *ReviewUseCase) AddDocument(ctx context.Context, id string, in dto.AddDocumentRequest) (*entity.Document, error) {
	errs := domain.ValidationErrors{}
	if strings.TrimSpace(in.Type) == "" {
		errs["type"] = "requerido"
	}
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "requerido"
	}
	if strings.TrimSpace(in.URL) == "" {
		errs["url"] = "requerido"
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if _, err := uc.load(ctx, id); err != nil {
		return nil, err
	}
	doc := entity.Document{
		ID:         uuid.New().String(),
		Type:       strings.TrimSpace(in.Type),
		Name:       strings.TrimSpace(in.Name),
		URL:        strings.TrimSpace(in.URL),
		UploadDate: uc.now(),
	}
	if err := uc.repo.AddDocument(ctx, id, doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SetDocumentVerified marca un documento como verificado (o lo desmarca).
func (uc *ReviewUseCase) SetDocumentVerified(ctx context.Context, id, docID string, verified bool) (*dto.OnboardingResponse, error) {
	if err := uc.repo.SetDocumentVerified(ctx, id, docID, verified); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: documento %s", domain.ErrNotFound, docID)
		}
		return nil, err
	}
	return uc.Get(ctx, id)
}

func (uc *ReviewUseCase) load(ctx context.Context, id string) (*entity.OnboardingRecord, error) {
	rec, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}
