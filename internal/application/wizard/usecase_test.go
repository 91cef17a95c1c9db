package wizard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onboarding-api/internal/application/dto"
	"github.com/jhoicas/onboarding-api/internal/application/ports"
	"github.com/jhoicas/onboarding-api/internal/application/wizard"
	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/catalog"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/onboarding"
	"github.com/jhoicas/onboarding-api/internal/domain/otp"
	"github.com/jhoicas/onboarding-api/internal/domain/pricing"
	"github.com/jhoicas/onboarding-api/internal/infrastructure/memory"
)

// ── Mocks ─────────────────────────────────────────────────────────────────────

type notifierMock struct{ mock.Mock }

func (m *notifierMock) SendOTP(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *notifierMock) SubmissionReceived(ctx context.Context, rec *entity.OnboardingRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *notifierMock) DecisionMade(ctx context.Context, rec *entity.OnboardingRecord) error {
	return m.Called(ctx, rec).Error(0)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) Publish(ctx context.Context, evt ports.Event) error {
	return m.Called(ctx, evt).Error(0)
}

type pdfMock struct{ mock.Mock }

func (m *pdfMock) GenerateQuotePDF(ctx context.Context, data entity.OnboardingData, q *entity.PricingDetails) ([]byte, error) {
	args := m.Called(ctx, data, q)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	uc       *wizard.WizardUseCase
	drafts   *memory.DraftRepo
	records  *memory.OnboardingRepo
	notifier *notifierMock
	events   *publisherMock
	pdf      *pdfMock
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		drafts:   memory.NewDraftRepository(),
		records:  memory.NewOnboardingRepository(),
		notifier: &notifierMock{},
		events:   &publisherMock{},
		pdf:      &pdfMock{},
		now:      time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	cat := catalog.Default()
	f.uc = wizard.NewWizardUseCase(wizard.Deps{
		Drafts:    f.drafts,
		Records:   f.records,
		Validator: onboarding.NewValidator(cat),
		Pricing:   pricing.NewCalculator(cat),
		OTP:       otp.NewRegistry(f.notifier, otp.Config{Now: clock}),
		PDF:       f.pdf,
		Notifier:  f.notifier,
		Events:    f.events,
		Now:       clock,
	})
	return f
}

const email = "accounts@vermatextiles.in"

func personal() entity.OnboardingData {
	return entity.OnboardingData{FirstName: "  Asha ", LastName: "Verma"}
}

func company() entity.OnboardingData {
	return entity.OnboardingData{
		CompanyName:   "Verma Textiles",
		CompanyEmail:  " Accounts@VermaTextiles.in ",
		CompanyMobile: "9123456789",
		CompanyGST:    "27aapfu0939f1zv",
		CompanyType:   "private_limited",
		IndustryType:  "textile",
	}
}

func address() entity.OnboardingData {
	return entity.OnboardingData{
		CompanyAddress: "Plot 14, MIDC Industrial Area, Bhosari",
		Country:        "India",
		State:          "Maharashtra",
		City:           "Pune",
		Pincode:        "411026",
	}
}

func plan() entity.OnboardingData {
	return entity.OnboardingData{Employees: 50, PlanDuration: "quarterly", Services: []string{"inventory", "Accounts"}}
}

// verifiedDraft recorre los pasos 0-2 y devuelve el id del borrador ya en el paso 3.
func (f *fixture) verifiedDraft(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	d, err := f.uc.CreateDraft(ctx)
	require.NoError(t, err)
	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepPersonal, personal())
	require.NoError(t, err)
	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepCompany, company())
	require.NoError(t, err)

	var code string
	f.notifier.On("SendOTP", mock.Anything, email, mock.Anything).
		Run(func(args mock.Arguments) { code = args.String(2) }).
		Return(nil).Once()
	_, err = f.uc.SendOTP(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, code, 6)

	res, err := f.uc.VerifyOTP(ctx, d.ID, code)
	require.NoError(t, err)
	require.True(t, res.Verified)
	require.Equal(t, entity.StepAddress, res.Draft.CurrentStep)
	return d.ID
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestWizard_FlujoCompletoHastaEnvio(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.verifiedDraft(t)

	_, err := f.uc.SaveStep(ctx, id, entity.StepAddress, address())
	require.NoError(t, err)
	d, err := f.uc.SaveStep(ctx, id, entity.StepServicePlan, plan())
	require.NoError(t, err)
	assert.Equal(t, entity.StepServicePlan, d.CurrentStep)
	require.NotNil(t, d.Quote)
	assert.True(t, d.Quote.FinalPrice.Equal(decimal.NewFromInt(16625)))

	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(e ports.Event) bool {
		return e.Type == ports.EventOnboardingSubmitted
	})).Return(nil).Once()
	f.notifier.On("SubmissionReceived", mock.Anything, mock.Anything).Return(nil).Once()

	out, err := f.uc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, out.Status)
	assert.Equal(t, "Asha", out.FirstName)
	assert.Equal(t, email, out.CompanyEmail)
	assert.Equal(t, "27AAPFU0939F1ZV", out.CompanyGST)
	assert.Equal(t, []string{"inventory", "accounts"}, out.Services)
	assert.True(t, out.PricingDetails.BasePrice.Equal(decimal.NewFromInt(17500)))
	assert.True(t, out.SubmissionDate.Equal(f.now))

	stored, err := f.records.GetByID(ctx, out.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	gone, _ := f.drafts.Get(ctx, id)
	assert.Nil(t, gone, "el borrador se elimina tras el envío")

	f.events.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestWizard_NoSePuedeSaltarPasos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d, err := f.uc.CreateDraft(ctx)
	require.NoError(t, err)

	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepAddress, address())
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepEmailOTP, entity.OnboardingData{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.SaveStep(ctx, d.ID, 7, entity.OnboardingData{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWizard_PasoInvalidoNoAvanzaPeroGuardaDatos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d, err := f.uc.CreateDraft(ctx)
	require.NoError(t, err)

	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepPersonal, entity.OnboardingData{FirstName: "A1", LastName: "Verma"})
	var serr *domain.StepValidationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, entity.StepPersonal, serr.Step)
	assert.Contains(t, serr.Fields, "first_name")

	got, err := f.uc.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StepPersonal, got.CurrentStep)
	assert.Equal(t, "A1", got.Data.FirstName)
}

func TestWizard_PasoSoloEscribeSusCampos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d, err := f.uc.CreateDraft(ctx)
	require.NoError(t, err)

	in := personal()
	in.CompanyName = "Colado"
	in.Employees = 99
	got, err := f.uc.SaveStep(ctx, d.ID, entity.StepPersonal, in)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Data.FirstName)
	assert.Empty(t, got.Data.CompanyName)
	assert.Zero(t, got.Data.Employees)
}

func TestWizard_FalloDeEnvioOTPBloqueaAvance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d, err := f.uc.CreateDraft(ctx)
	require.NoError(t, err)
	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepPersonal, personal())
	require.NoError(t, err)
	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepCompany, company())
	require.NoError(t, err)

	f.notifier.On("SendOTP", mock.Anything, email, mock.Anything).Return(errors.New("smtp caído")).Once()
	_, err = f.uc.SendOTP(ctx, d.ID)
	var send *domain.SendError
	require.True(t, errors.As(err, &send))
	assert.ErrorIs(t, err, domain.ErrExternalCall)

	got, err := f.uc.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StepEmailOTP, got.CurrentStep)
	assert.False(t, got.EmailVerified)
	assert.Equal(t, string(otp.StateIdle), got.OTP.State)

	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepAddress, address())
	assert.ErrorIs(t, err, domain.ErrConflict, "sin verificar no se llega al paso 3")
}

func TestWizard_CambioDePasoCancelaEnvioOTP(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d, err := f.uc.CreateDraft(ctx)
	require.NoError(t, err)
	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepPersonal, personal())
	require.NoError(t, err)
	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepCompany, company())
	require.NoError(t, err)

	started := make(chan struct{})
	f.notifier.On("SendOTP", mock.Anything, email, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.Canceled).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.uc.SendOTP(ctx, d.ID)
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("el envío no llegó al notificador")
	}
	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepPersonal, personal())
	require.NoError(t, err)

	select {
	case err = <-done:
		assert.ErrorIs(t, err, otp.ErrSendCancelled)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("SendOTP no terminó tras cambiar de paso")
	}

	got, err := f.uc.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StepEmailOTP, got.CurrentStep)
	assert.False(t, got.EmailVerified)
	assert.Equal(t, string(otp.StateIdle), got.OTP.State)
	f.notifier.AssertExpectations(t)
}

func TestWizard_OTPAntesDelPasoEmpresa(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d, err := f.uc.CreateDraft(ctx)
	require.NoError(t, err)

	_, err = f.uc.SendOTP(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	f.notifier.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything, mock.Anything)

	_, err = f.uc.VerifyOTP(ctx, d.ID, "123456")
	assert.ErrorIs(t, err, domain.ErrOTPState)
}

func TestWizard_CambiarEmailReiniciaVerificacion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.verifiedDraft(t)
	_, err := f.uc.SaveStep(ctx, id, entity.StepAddress, address())
	require.NoError(t, err)

	in := company()
	in.CompanyEmail = "billing@vermatextiles.in"
	got, err := f.uc.SaveStep(ctx, id, entity.StepCompany, in)
	require.NoError(t, err)
	assert.False(t, got.EmailVerified)
	assert.Equal(t, entity.StepEmailOTP, got.CurrentStep)
	assert.Equal(t, string(otp.StateIdle), got.OTP.State)

	_, err = f.uc.Submit(ctx, id)
	assert.Error(t, err)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestWizard_ReenvioRespetaCuentaAtras(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d, err := f.uc.CreateDraft(ctx)
	require.NoError(t, err)
	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepPersonal, personal())
	require.NoError(t, err)
	_, err = f.uc.SaveStep(ctx, d.ID, entity.StepCompany, company())
	require.NoError(t, err)

	f.notifier.On("SendOTP", mock.Anything, email, mock.Anything).Return(nil)
	got, err := f.uc.SendOTP(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.OTP.ResendInSeconds)

	_, err = f.uc.ResendOTP(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrOTPCooldown)

	f.now = f.now.Add(61 * time.Second)
	_, err = f.uc.ResendOTP(ctx, d.ID)
	assert.NoError(t, err)
	f.notifier.AssertNumberOfCalls(t, "SendOTP", 2)
}

func TestWizard_SubmitConCamposFaltantesNoPersiste(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.verifiedDraft(t)

	_, err := f.uc.Submit(ctx, id)
	var missing *domain.MissingDataError
	require.True(t, errors.As(err, &missing))
	assert.Contains(t, missing.Fields, "company_address")
	assert.Contains(t, missing.Fields, "services")

	list, _ := f.records.ListAll(ctx)
	assert.Empty(t, list)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "SubmissionReceived", mock.Anything, mock.Anything)
}

func TestWizard_FallosPosterioresNoDeshacenEnvio(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.verifiedDraft(t)
	_, err := f.uc.SaveStep(ctx, id, entity.StepAddress, address())
	require.NoError(t, err)
	_, err = f.uc.SaveStep(ctx, id, entity.StepServicePlan, plan())
	require.NoError(t, err)

	f.events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker caído"))
	f.notifier.On("SubmissionReceived", mock.Anything, mock.Anything).Return(errors.New("smtp caído"))

	out, err := f.uc.Submit(ctx, id)
	require.NoError(t, err)
	stored, _ := f.records.GetByID(ctx, out.ID)
	assert.NotNil(t, stored)
}

func TestWizard_Quote(t *testing.T) {
	f := newFixture(t)

	q := f.uc.Quote(dto.QuoteRequest{Employees: 50, Services: []string{"inventory"}})
	assert.False(t, q.Available)
	assert.Nil(t, q.Pricing)

	q = f.uc.Quote(dto.QuoteRequest{Employees: 10, Services: []string{" HRMS "}, PlanDuration: "yearly"})
	require.True(t, q.Available)
	assert.True(t, q.Pricing.BasePrice.Equal(decimal.NewFromInt(2000)), "precio mínimo de hrms")
	assert.True(t, q.Pricing.FinalPrice.Equal(decimal.NewFromInt(1700)))
}

func TestWizard_QuotePDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d, err := f.uc.CreateDraft(ctx)
	require.NoError(t, err)

	_, err = f.uc.QuotePDF(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrMissingData)

	id := f.verifiedDraft(t)
	_, err = f.uc.SaveStep(ctx, id, entity.StepAddress, address())
	require.NoError(t, err)
	_, err = f.uc.SaveStep(ctx, id, entity.StepServicePlan, plan())
	require.NoError(t, err)

	f.pdf.On("GenerateQuotePDF", mock.Anything, mock.Anything, mock.Anything).Return([]byte("%PDF-1.3"), nil).Once()
	out, err := f.uc.QuotePDF(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), out)
}

func TestWizard_PurgeStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d, err := f.uc.CreateDraft(ctx)
	require.NoError(t, err)

	f.now = f.now.Add(80 * time.Hour)
	n, err := f.uc.PurgeStale(ctx, f.now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.uc.GetDraft(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
