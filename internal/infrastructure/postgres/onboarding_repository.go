package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/repository"
)

var _ repository.OnboardingRepository = (*OnboardingRepo)(nil)

// OnboardingRepo implementación del puerto OnboardingRepository sobre PostgreSQL.
type OnboardingRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewOnboardingRepository construye el adaptador de persistencia para solicitudes.
func NewOnboardingRepository(pool *pgxpool.Pool) *OnboardingRepo {
	return &OnboardingRepo{pool: pool, tx: NewTxRunner(pool)}
}

const onboardingColumns = `
	id, first_name, last_name, company_name, company_email, company_mobile, company_landline,
	company_website, company_gst, company_pan, company_type, industry_type,
	company_address, country, state, city, pincode, employees, plan_duration, services,
	base_price, discount_percent, discount, final_price, months, plan_total, gst_amount,
	total_with_gst, pricing_breakdown, status, admin_notes, rejection_reason, rejection_details,
	processed_by, processed_date, submission_date, created_at, updated_at`

// Create persiste la solicitud y sus documentos en una transacción.
func (r *OnboardingRepo) Create(ctx context.Context, rec *entity.OnboardingRecord) error {
	breakdown, err := json.Marshal(rec.Pricing.Breakdown)
	if err != nil {
		return fmt.Errorf("serializar desglose: %w", err)
	}

	query := `INSERT INTO onboardings (` + onboardingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37, $38)`
	d, p := rec.OnboardingData, rec.Pricing
	return r.tx.Run(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			rec.ID, d.FirstName, d.LastName, d.CompanyName, d.CompanyEmail, d.CompanyMobile, d.CompanyLandline,
			d.CompanyWebsite, d.CompanyGST, d.CompanyPAN, d.CompanyType, d.IndustryType,
			d.CompanyAddress, d.Country, d.State, d.City, d.Pincode, d.Employees, d.PlanDuration, d.Services,
			p.BasePrice, p.DiscountPercent, p.Discount, p.FinalPrice, p.Months, p.PlanTotal, p.GSTAmount,
			p.TotalWithGST, breakdown, string(rec.Status), rec.AdminNotes, rec.RejectionReason, rec.RejectionDetails,
			rec.ProcessedBy, rec.ProcessedDate, rec.SubmissionDate, rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: solicitud %s", domain.ErrDuplicate, rec.ID)
			}
			return fmt.Errorf("insert onboarding: %w", err)
		}
		for _, doc := range rec.Documents {
			if err := insertDocument(ctx, tx, rec.ID, doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID obtiene una solicitud con sus documentos. (nil, nil) si no existe.
func (r *OnboardingRepo) GetByID(ctx context.Context, id string) (*entity.OnboardingRecord, error) {
	return getOnboarding(ctx, r.pool, id)
}

// ListAll lista todas las solicitudes, más recientes primero.
func (r *OnboardingRepo) ListAll(ctx context.Context) ([]*entity.OnboardingRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+onboardingColumns+` FROM onboardings ORDER BY submission_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list onboardings: %w", err)
	}
	defer rows.Close()

	var list []*entity.OnboardingRecord
	byID := make(map[string]*entity.OnboardingRecord)
	for rows.Next() {
		rec, err := scanOnboarding(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list onboardings: %w", err)
	}
	if len(list) == 0 {
		return list, nil
	}

	docRows, err := r.pool.Query(ctx, `
		SELECT onboarding_id, id, type, name, url, upload_date, verified
		FROM onboarding_documents ORDER BY upload_date`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer docRows.Close()
	for docRows.Next() {
		var ownerID string
		var doc entity.Document
		if err := docRows.Scan(&ownerID, &doc.ID, &doc.Type, &doc.Name, &doc.URL, &doc.UploadDate, &doc.Verified); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if rec, ok := byID[ownerID]; ok {
			rec.Documents = append(rec.Documents, doc)
		}
	}
	return list, docRows.Err()
}

// UpdateStatus aplica el cambio con un UPDATE condicionado al estado actual: dos revisores
// concurrentes no pueden aplicar ambos la misma transición.
func (r *OnboardingRepo) UpdateStatus(ctx context.Context, id string, change entity.StatusChange) (*entity.OnboardingRecord, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	from := make([]string, len(change.From))
	for i, s := range change.From {
		from[i] = string(s)
	}
	query := `
		UPDATE onboardings SET
			status            = $3,
			admin_notes       = COALESCE($4::text, admin_notes),
			rejection_reason  = CASE WHEN $5::text <> '' THEN $5::text ELSE rejection_reason END,
			rejection_details = CASE WHEN $5::text <> '' THEN $6::text ELSE rejection_details END,
			processed_by      = CASE WHEN $7::text <> '' THEN $7::text ELSE processed_by END,
			processed_date    = COALESCE($8::timestamptz, processed_date),
			updated_at        = $9
		WHERE id = $1 AND status = ANY($2)`
	tag, err := r.pool.Exec(ctx, query,
		id, from, string(change.To), change.AdminNotes, change.RejectionReason, change.RejectionDetails,
		change.ProcessedBy, change.ProcessedDate, change.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update onboarding status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var current string
		err := r.pool.QueryRow(ctx, `SELECT status FROM onboardings WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("get onboarding status: %w", err)
		}
		return nil, &domain.TransitionError{From: current, To: string(change.To)}
	}
	rec, err := getOnboarding(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// AddDocument agrega metadatos de un documento.
func (r *OnboardingRepo) AddDocument(ctx context.Context, id string, doc entity.Document) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM onboardings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("get onboarding: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return insertDocument(ctx, r.pool, id, doc)
}

// SetDocumentVerified marca o desmarca un documento.
func (r *OnboardingRepo) SetDocumentVerified(ctx context.Context, id, docID string, verified bool) error {
	if !validID(id) || !validID(docID) {
		return domain.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE onboarding_documents SET verified = $3 WHERE onboarding_id = $1 AND id = $2`,
		id, docID, verified,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func insertDocument(ctx context.Context, db dbtx, onboardingID string, doc entity.Document) error {
	_, err := db.Exec(ctx, `
		INSERT INTO onboarding_documents (id, onboarding_id, type, name, url, upload_date, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, onboardingID, doc.Type, doc.Name, doc.URL, doc.UploadDate, doc.Verified,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func getOnboarding(ctx context.Context, db dbtx, id string) (*entity.OnboardingRecord, error) {
	if !validID(id) {
		return nil, nil
	}
	rec, err := scanOnboarding(db.QueryRow(ctx, `SELECT `+onboardingColumns+` FROM onboardings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := db.Query(ctx, `
		SELECT id, type, name, url, upload_date, verified
		FROM onboarding_documents WHERE onboarding_id = $1 ORDER BY upload_date`, id)
	if err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var doc entity.Document
		if err := rows.Scan(&doc.ID, &doc.Type, &doc.Name, &doc.URL, &doc.UploadDate, &doc.Verified); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		rec.Documents = append(rec.Documents, doc)
	}
	return rec, rows.Err()
}

func scanOnboarding(row pgx.Row) (*entity.OnboardingRecord, error) {
	var rec entity.OnboardingRecord
	var status string
	var breakdown []byte
	d, p := &rec.OnboardingData, &rec.Pricing
	err := row.Scan(
		&rec.ID, &d.FirstName, &d.LastName, &d.CompanyName, &d.CompanyEmail, &d.CompanyMobile, &d.CompanyLandline,
		&d.CompanyWebsite, &d.CompanyGST, &d.CompanyPAN, &d.CompanyType, &d.IndustryType,
		&d.CompanyAddress, &d.Country, &d.State, &d.City, &d.Pincode, &d.Employees, &d.PlanDuration, &d.Services,
		&p.BasePrice, &p.DiscountPercent, &p.Discount, &p.FinalPrice, &p.Months, &p.PlanTotal, &p.GSTAmount,
		&p.TotalWithGST, &breakdown, &status, &rec.AdminNotes, &rec.RejectionReason, &rec.RejectionDetails,
		&rec.ProcessedBy, &rec.ProcessedDate, &rec.SubmissionDate, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan onboarding: %w", err)
	}
	rec.Status = entity.OnboardingStatus(status)
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &p.Breakdown); err != nil {
			return nil, fmt.Errorf("decodificar desglose: %w", err)
		}
	}
	return &rec, nil
}
