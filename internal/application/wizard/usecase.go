// Package wizard orquesta el asistente de alta de empresas: borradores paso a paso,
// verificación del email por OTP, cotización y envío final de la solicitud.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/onboarding-api/internal/application/dto"
	"github.com/jhoicas/onboarding-api/internal/application/ports"
	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/onboarding"
	"github.com/jhoicas/onboarding-api/internal/domain/otp"
	"github.com/jhoicas/onboarding-api/internal/domain/pricing"
	"github.com/jhoicas/onboarding-api/internal/domain/repository"
	"github.com/jhoicas/onboarding-api/pkg/logger"
)

// sideEffectTimeout límite para publicar el evento y enviar el correo tras el envío.
const sideEffectTimeout = 10 * time.Second

// Deps dependencias del caso de uso.
type Deps struct {
	Drafts    repository.DraftRepository
	Records   repository.OnboardingRepository
	Validator *onboarding.Validator
	Pricing   *pricing.Calculator
	OTP       *otp.Registry
	PDF       ports.QuotePDFGenerator
	Notifier  ports.Notifier
	Events    ports.EventPublisher
	Log       *logger.Logger
	Now       func() time.Time
}

// WizardUseCase casos de uso del asistente público.
type WizardUseCase struct {
	drafts    repository.DraftRepository
	records   repository.OnboardingRepository
	validator *onboarding.Validator
	pricing   *pricing.Calculator
	otp       *otp.Registry
	pdf       ports.QuotePDFGenerator
	notifier  ports.Notifier
	events    ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
	locks     *draftLocks
}

// NewWizardUseCase construye el caso de uso.
func NewWizardUseCase(d Deps) *WizardUseCase {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &WizardUseCase{
		drafts:    d.Drafts,
		records:   d.Records,
		validator: d.Validator,
		pricing:   d.Pricing,
		otp:       d.OTP,
		pdf:       d.PDF,
		notifier:  d.Notifier,
		events:    d.Events,
		log:       d.Log,
		now:       d.Now,
		locks:     newDraftLocks(),
	}
}

// CreateDraft abre un asistente vacío en el paso 0.
func (uc *WizardUseCase) CreateDraft(ctx context.Context) (*dto.DraftResponse, error) {
	now := uc.now()
	d := &entity.Draft{
		ID:          uuid.New().String(),
		CurrentStep: entity.StepPersonal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.drafts.Create(ctx, d); err != nil {
		return nil, err
	}
	return uc.toDraftResponse(d), nil
}

// GetDraft devuelve el borrador con el estado OTP y la cotización si ya es calculable.
func (uc *WizardUseCase) GetDraft(ctx context.Context, id string) (*dto.DraftResponse, error) {
	d, err := uc.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toDraftResponse(d), nil
}

// SaveStep escribe los campos del paso en el borrador y lo valida.
// Solo se pueden guardar pasos ya alcanzados; el paso 2 se completa verificando el OTP.
// Los datos se guardan aunque no sean válidos, pero el asistente solo avanza si lo son.
func (uc *WizardUseCase) SaveStep(ctx context.Context, id string, step int, in entity.OnboardingData) (*dto.DraftResponse, error) {
	if step < 0 || step >= entity.StepCount {
		return nil, fmt.Errorf("%w: paso %d fuera de rango", domain.ErrInvalidInput, step)
	}
	if step == entity.StepEmailOTP {
		return nil, fmt.Errorf("%w: el paso %d se completa verificando el código OTP", domain.ErrInvalidInput, step)
	}

	unlock := uc.locks.lock(id, uc.now())
	defer unlock()

	d, err := uc.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if step > d.CurrentStep {
		return nil, fmt.Errorf("%w: el paso %d aún no está habilitado (actual %d)", domain.ErrConflict, step, d.CurrentStep)
	}

	// Cambiar de paso descarta cualquier envío OTP en curso.
	if g, ok := uc.otp.Lookup(id); ok {
		g.Cancel()
	}

	prevEmail := d.Data.CompanyEmail
	mergeStep(&d.Data, step, in)
	if step == entity.StepCompany && d.Data.CompanyEmail != prevEmail {
		uc.resetVerification(d)
	}

	res, err := uc.validator.ValidateStep(step, d.Data, d.OTPVerified())
	if err != nil {
		return nil, err
	}
	if res.Valid {
		d.CurrentStep = max(d.CurrentStep, nextStep(step))
	}
	d.UpdatedAt = uc.now()
	if err := uc.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, &domain.StepValidationError{Step: step, Fields: res.Errors}
	}
	uc.log.Debug().Str("draft_id", id).Int("step", step).Int("current_step", d.CurrentStep).Msg("paso guardado")
	return uc.toDraftResponse(d), nil
}

// resetVerification invalida el OTP cuando cambia el email y devuelve el asistente al paso 2.
func (uc *WizardUseCase) resetVerification(d *entity.Draft) {
	d.EmailVerified = false
	d.VerifiedEmail = ""
	if g, ok := uc.otp.Lookup(d.ID); ok {
		g.Reset()
	}
	if d.CurrentStep > entity.StepEmailOTP {
		d.CurrentStep = entity.StepEmailOTP
	}
}

func nextStep(step int) int {
	if step == entity.StepServicePlan {
		return entity.StepServicePlan
	}
	return step + 1
}

// Quote calcula la vista previa de precios. Available=false mientras falte algún dato.
func (uc *WizardUseCase) Quote(in dto.QuoteRequest) *dto.QuoteResponse {
	q, ok := uc.pricing.ComputeQuote(in.Employees, normalizeServices(in.Services), strings.TrimSpace(in.PlanDuration))
	return &dto.QuoteResponse{Available: ok, Pricing: q}
}

// QuotePDF genera la cotización imprimible del borrador.
func (uc *WizardUseCase) QuotePDF(ctx context.Context, id string) ([]byte, error) {
	d, err := uc.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	q, ok := uc.pricing.ComputeQuote(d.Data.Employees, d.Data.Services, d.Data.PlanDuration)
	if !ok {
		return nil, &domain.MissingDataError{Fields: quoteMissing(d.Data)}
	}
	out, err := uc.pdf.GenerateQuotePDF(ctx, d.Data, q)
	if err != nil {
		return nil, &domain.ExternalCallError{Op: "generar PDF de cotización", Err: err}
	}
	return out, nil
}

func quoteMissing(data entity.OnboardingData) []string {
	var missing []string
	if data.Employees <= 0 {
		missing = append(missing, "employees")
	}
	if len(data.Services) == 0 {
		missing = append(missing, "services")
	}
	if data.PlanDuration == "" {
		missing = append(missing, "plan_duration")
	}
	if len(missing) == 0 {
		// datos presentes pero no reconocidos por el catálogo
		missing = append(missing, "services", "plan_duration")
	}
	return missing
}

// ── OTP ───────────────────────────────────────────────────────────────────────

// SendOTP envía el código al email de la empresa. Requiere el paso 1 completo.
// Si el envío falla el asistente no avanza.
func (uc *WizardUseCase) SendOTP(ctx context.Context, id string) (*dto.DraftResponse, error) {
	email, err := uc.otpTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.otp.Gate(id).Send(ctx, email); err != nil {
		uc.logOTPError(id, "envío", err)
		return nil, err
	}
	uc.log.Info().Str("draft_id", id).Msg("código OTP enviado")
	return uc.GetDraft(ctx, id)
}

// ResendOTP emite un código nuevo cuando terminó la cuenta atrás.
func (uc *WizardUseCase) ResendOTP(ctx context.Context, id string) (*dto.DraftResponse, error) {
	if _, err := uc.otpTarget(ctx, id); err != nil {
		return nil, err
	}
	g, ok := uc.otp.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: no se ha enviado ningún código", domain.ErrOTPState)
	}
	if err := g.Resend(ctx); err != nil {
		uc.logOTPError(id, "reenvío", err)
		return nil, err
	}
	uc.log.Info().Str("draft_id", id).Msg("código OTP reenviado")
	return uc.GetDraft(ctx, id)
}

// VerifyOTP comprueba el código. Si es correcto el borrador queda verificado y pasa al paso 3.
func (uc *WizardUseCase) VerifyOTP(ctx context.Context, id, code string) (*dto.VerifyOTPResponse, error) {
	g, ok := uc.otp.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: no se ha enviado ningún código", domain.ErrOTPState)
	}
	verified, err := g.Verify(strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}

	unlock := uc.locks.lock(id, uc.now())
	defer unlock()

	d, err := uc.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if verified {
		snap := g.Snapshot()
		if snap.Email != d.Data.CompanyEmail {
			// el email cambió mientras se verificaba
			g.Reset()
			return nil, fmt.Errorf("%w: el email de la empresa cambió", domain.ErrOTPState)
		}
		d.EmailVerified = true
		d.VerifiedEmail = snap.Email
		d.CurrentStep = max(d.CurrentStep, entity.StepAddress)
		d.UpdatedAt = uc.now()
		if err := uc.drafts.Save(ctx, d); err != nil {
			return nil, err
		}
		uc.log.Info().Str("draft_id", id).Msg("email verificado")
	} else {
		uc.log.Info().Str("draft_id", id).Msg("código OTP incorrecto o expirado")
	}
	return &dto.VerifyOTPResponse{Verified: verified, Draft: *uc.toDraftResponse(d)}, nil
}

func (uc *WizardUseCase) otpTarget(ctx context.Context, id string) (string, error) {
	d, err := uc.loadDraft(ctx, id)
	if err != nil {
		return "", err
	}
	if d.CurrentStep < entity.StepEmailOTP {
		return "", fmt.Errorf("%w: complete los datos de la empresa antes de verificar el email", domain.ErrConflict)
	}
	if d.OTPVerified() {
		return "", fmt.Errorf("%w: el email ya está verificado", domain.ErrOTPState)
	}
	return d.Data.CompanyEmail, nil
}

func (uc *WizardUseCase) logOTPError(id, op string, err error) {
	ev := uc.log.Warn()
	if errors.Is(err, domain.ErrExternalCall) {
		ev = uc.log.Error()
	}
	ev.Err(err).Str("draft_id", id).Str("op", op).Msg("OTP no enviado")
}

// ── Envío final ───────────────────────────────────────────────────────────────

// Submit revalida todo el borrador, persiste la solicitud en estado pending y borra el borrador.
// Con campos faltantes no se persiste nada. El evento y el correo de confirmación
// se emiten después; sus fallos se registran pero no deshacen el envío.
func (uc *WizardUseCase) Submit(ctx context.Context, id string) (*dto.OnboardingResponse, error) {
	submitted := false
	unlock := uc.locks.lock(id, uc.now())
	defer func() {
		unlock()
		if submitted {
			uc.locks.forget(id)
		}
	}()

	d, err := uc.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.validator.ValidateAll(d.Data, d.OTPVerified()); err != nil {
		uc.log.Info().Err(err).Str("draft_id", id).Msg("envío rechazado por validación")
		return nil, err
	}
	q, ok := uc.pricing.ComputeQuote(d.Data.Employees, d.Data.Services, d.Data.PlanDuration)
	if !ok {
		return nil, &domain.MissingDataError{Fields: quoteMissing(d.Data)}
	}

	now := uc.now()
	rec := &entity.OnboardingRecord{
		ID:             uuid.New().String(),
		OnboardingData: d.Data,
		Pricing:        *q,
		Status:         entity.StatusPending,
		SubmissionDate: now,
		Documents:      []entity.Document{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.records.Create(ctx, rec); err != nil {
		uc.log.Error().Err(err).Str("draft_id", id).Msg("no se pudo guardar la solicitud")
		return nil, &domain.ExternalCallError{Op: "guardar solicitud", Err: err}
	}
	submitted = true

	if err := uc.drafts.Delete(ctx, id); err != nil {
		uc.log.Warn().Err(err).Str("draft_id", id).Msg("no se pudo borrar el borrador enviado")
	}
	uc.otp.Remove(id)

	uc.log.Info().
		Str("onboarding_id", rec.ID).
		Str("company", rec.CompanyName).
		Str("final_price", rec.Pricing.FinalPrice.String()).
		Msg("solicitud de alta recibida")

	uc.afterSubmit(ctx, rec)
	return dto.NewOnboardingResponse(rec), nil
}

func (uc *WizardUseCase) afterSubmit(ctx context.Context, rec *entity.OnboardingRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		evt := ports.Event{
			Type:       ports.EventOnboardingSubmitted,
			Key:        rec.ID,
			OccurredAt: rec.SubmissionDate,
			Payload:    dto.NewOnboardingResponse(rec),
		}
		if err := uc.events.Publish(ctx, evt); err != nil {
			uc.log.Error().Err(err).Str("onboarding_id", rec.ID).Msg("no se pudo publicar el evento de alta")
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := uc.notifier.SubmissionReceived(ctx, rec); err != nil {
			uc.log.Error().Err(err).Str("onboarding_id", rec.ID).Msg("no se pudo enviar la confirmación")
			return err
		}
		return nil
	})
	_ = g.Wait()
}

// PurgeStale borra borradores sin actividad desde before junto con su estado OTP.
func (uc *WizardUseCase) PurgeStale(ctx context.Context, before time.Time) (int, error) {
	n, err := uc.drafts.PurgeOlderThan(ctx, before)
	if err != nil {
		return 0, err
	}
	gates := uc.otp.PurgeIdle(before)
	uc.locks.purge(before)
	if n > 0 || gates > 0 {
		uc.log.Info().Int("drafts", n).Int("otp_gates", gates).Msg("borradores caducados eliminados")
	}
	return n, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (uc *WizardUseCase) loadDraft(ctx context.Context, id string) (*entity.Draft, error) {
	d, err := uc.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (uc *WizardUseCase) toDraftResponse(d *entity.Draft) *dto.DraftResponse {
	out := &dto.DraftResponse{
		ID:            d.ID,
		CurrentStep:   d.CurrentStep,
		Data:          d.Data,
		EmailVerified: d.OTPVerified(),
		OTP:           dto.OTPStatus{State: string(otp.StateIdle)},
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if g, ok := uc.otp.Lookup(d.ID); ok {
		snap := g.Snapshot()
		out.OTP = dto.OTPStatus{
			State:           string(snap.State),
			Email:           snap.Email,
			ResendInSeconds: int((snap.ResendIn + time.Second - 1) / time.Second),
		}
	}
	if q, ok := uc.pricing.ComputeQuote(d.Data.Employees, d.Data.Services, d.Data.PlanDuration); ok {
		out.Quote = q
	}
	return out
}

// mergeStep copia solo los campos del paso, normalizados.
func mergeStep(dst *entity.OnboardingData, step int, in entity.OnboardingData) {
	switch step {
	case entity.StepPersonal:
		dst.FirstName = collapse(in.FirstName)
		dst.LastName = collapse(in.LastName)
	case entity.StepCompany:
		dst.CompanyName = collapse(in.CompanyName)
		dst.CompanyEmail = strings.ToLower(strings.TrimSpace(in.CompanyEmail))
		dst.CompanyMobile = strings.TrimSpace(in.CompanyMobile)
		dst.CompanyLandline = strings.TrimSpace(in.CompanyLandline)
		dst.CompanyWebsite = strings.TrimSpace(in.CompanyWebsite)
		dst.CompanyGST = strings.ToUpper(strings.TrimSpace(in.CompanyGST))
		dst.CompanyPAN = strings.ToUpper(strings.TrimSpace(in.CompanyPAN))
		dst.CompanyType = strings.TrimSpace(in.CompanyType)
		dst.IndustryType = strings.TrimSpace(in.IndustryType)
	case entity.StepAddress:
		dst.CompanyAddress = strings.TrimSpace(in.CompanyAddress)
		dst.Country = collapse(in.Country)
		dst.State = collapse(in.State)
		dst.City = collapse(in.City)
		dst.Pincode = strings.TrimSpace(in.Pincode)
	case entity.StepServicePlan:
		dst.Employees = in.Employees
		dst.PlanDuration = strings.TrimSpace(in.PlanDuration)
		dst.Services = normalizeServices(in.Services)
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeServices(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
