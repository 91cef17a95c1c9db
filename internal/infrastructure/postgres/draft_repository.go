package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/repository"
)

var _ repository.DraftRepository = (*DraftRepo)(nil)

// DraftRepo borradores del asistente; los datos del formulario se guardan como JSONB.
type DraftRepo struct {
	pool *pgxpool.Pool
}

// NewDraftRepository construye el adaptador de persistencia para borradores.
func NewDraftRepository(pool *pgxpool.Pool) *DraftRepo {
	return &DraftRepo{pool: pool}
}

func (r *DraftRepo) Create(ctx context.Context, d *entity.Draft) error {
	data, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("serializar borrador: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO onboarding_drafts (id, current_step, data, email_verified, verified_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.CurrentStep, data, d.EmailVerified, d.VerifiedEmail, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: borrador %s", domain.ErrDuplicate, d.ID)
		}
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

func (r *DraftRepo) Get(ctx context.Context, id string) (*entity.Draft, error) {
	if !validID(id) {
		return nil, nil
	}
	var d entity.Draft
	var data []byte
	err := r.pool.QueryRow(ctx, `
		SELECT id, current_step, data, email_verified, verified_email, created_at, updated_at
		FROM onboarding_drafts WHERE id = $1`, id,
	).Scan(&d.ID, &d.CurrentStep, &data, &d.EmailVerified, &d.VerifiedEmail, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if err := json.Unmarshal(data, &d.Data); err != nil {
		return nil, fmt.Errorf("decodificar borrador: %w", err)
	}
	return &d, nil
}

func (r *DraftRepo) Save(ctx context.Context, d *entity.Draft) error {
	data, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("serializar borrador: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE onboarding_drafts
		SET current_step = $2, data = $3, email_verified = $4, verified_email = $5, updated_at = $6
		WHERE id = $1`,
		d.ID, d.CurrentStep, data, d.EmailVerified, d.VerifiedEmail, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DraftRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM onboarding_drafts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (r *DraftRepo) PurgeOlderThan(ctx context.Context, before time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM onboarding_drafts WHERE updated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
