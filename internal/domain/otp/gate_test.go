package otp_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/otp"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock reloj controlable.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// captureSender guarda el último código enviado.
type captureSender struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (s *captureSender) SendOTP(_ context.Context, _ string, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.codes = append(s.codes, code)
	return nil
}

func (s *captureSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[len(s.codes)-1]
}

func newGate(s otp.Sender, clk *fakeClock) *otp.Gate {
	return otp.NewGate(s, otp.Config{Now: clk.Now})
}

func TestGate_FlujoCompleto(t *testing.T) {
	clk := newClock()
	s := &captureSender{}
	g := newGate(s, clk)

	assert.Equal(t, otp.StateIdle, g.Snapshot().State)
	require.NoError(t, g.Send(context.Background(), "ops@acme.in"))

	snap := g.Snapshot()
	assert.Equal(t, otp.StateSent, snap.State)
	assert.Equal(t, "ops@acme.in", snap.Email)
	assert.Equal(t, 60*time.Second, snap.ResendIn)
	assert.Len(t, s.last(), 6)

	clk.Advance(30 * time.Second)
	ok, err := g.Verify(s.last())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, otp.StateVerified, g.Snapshot().State)
}

func TestGate_EmailMalFormado(t *testing.T) {
	g := newGate(&captureSender{}, newClock())
	err := g.Send(context.Background(), "no-es-email")

	var sendErr *domain.SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, otp.StateIdle, g.Snapshot().State)
}

func TestGate_FalloDelProveedorNoCambiaEstado(t *testing.T) {
	s := &captureSender{err: errors.New("smtp caído")}
	g := newGate(s, newClock())

	err := g.Send(context.Background(), "ops@acme.in")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalCall)
	assert.Equal(t, otp.StateIdle, g.Snapshot().State)

	s.err = nil
	require.NoError(t, g.Send(context.Background(), "ops@acme.in"), "tras el fallo se puede reintentar")
}

func TestGate_CodigoIncorrectoPasaAFailedYExigeReenvio(t *testing.T) {
	clk := newClock()
	s := &captureSender{}
	g := newGate(s, clk)
	require.NoError(t, g.Send(context.Background(), "ops@acme.in"))

	wrong := "000000"
	if s.last() == wrong {
		wrong = "111111"
	}
	ok, err := g.Verify(wrong)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, otp.StateFailed, g.Snapshot().State)

	_, err = g.Verify(s.last())
	assert.ErrorIs(t, err, domain.ErrOTPState, "verify exige estado sent")

	assert.ErrorIs(t, g.Resend(context.Background()), domain.ErrOTPCooldown)

	clk.Advance(61 * time.Second)
	require.NoError(t, g.Resend(context.Background()))
	assert.Equal(t, otp.StateSent, g.Snapshot().State)

	ok, err = g.Verify(s.last())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGate_CodigoExpirado(t *testing.T) {
	clk := newClock()
	s := &captureSender{}
	g := newGate(s, clk)
	require.NoError(t, g.Send(context.Background(), "ops@acme.in"))

	clk.Advance(11 * time.Minute)
	ok, err := g.Verify(s.last())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, otp.StateFailed, g.Snapshot().State)
}

func TestGate_ReenvioSoloTrasCuentaAtras(t *testing.T) {
	clk := newClock()
	s := &captureSender{}
	g := newGate(s, clk)

	assert.ErrorIs(t, g.Resend(context.Background()), domain.ErrOTPState, "no hay nada que reenviar")

	require.NoError(t, g.Send(context.Background(), "ops@acme.in"))
	assert.ErrorIs(t, g.Send(context.Background(), "ops@acme.in"), domain.ErrOTPState)

	clk.Advance(59 * time.Second)
	assert.ErrorIs(t, g.Resend(context.Background()), domain.ErrOTPCooldown)

	clk.Advance(time.Second)
	require.NoError(t, g.Resend(context.Background()))
	assert.Len(t, s.codes, 2)
	assert.Equal(t, 60*time.Second, g.Snapshot().ResendIn, "el reenvío reinicia la cuenta atrás")
}

// blockingSender bloquea hasta que el contexto se cancele.
type blockingSender struct {
	started chan struct{}
}

func (b *blockingSender) SendOTP(ctx context.Context, _ string, _ string) error {
	close(b.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestGate_CancelDescartaEnvioEnCurso(t *testing.T) {
	b := &blockingSender{started: make(chan struct{})}
	g := newGate(b, newClock())

	done := make(chan error, 1)
	go func() { done <- g.Send(context.Background(), "ops@acme.in") }()

	<-b.started
	g.Cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, otp.ErrSendCancelled)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Send no terminó tras Cancel")
	}
	assert.Equal(t, otp.StateIdle, g.Snapshot().State)
}

func TestGate_ResetVuelveAIdle(t *testing.T) {
	g := newGate(&captureSender{}, newClock())
	require.NoError(t, g.Send(context.Background(), "ops@acme.in"))
	g.Reset()
	snap := g.Snapshot()
	assert.Equal(t, otp.StateIdle, snap.State)
	assert.Empty(t, snap.Email)
	assert.Zero(t, snap.ResendIn)
}

func TestRegistry_PurgeIdle(t *testing.T) {
	clk := newClock()
	r := otp.NewRegistry(&captureSender{}, otp.Config{Now: clk.Now})

	g1 := r.Gate("d1")
	assert.Same(t, g1, r.Gate("d1"))
	clk.Advance(time.Hour)
	r.Gate("d2")

	assert.Equal(t, 1, r.PurgeIdle(clk.Now().Add(-time.Minute)))
	_, ok := r.Lookup("d1")
	assert.False(t, ok)
	_, ok = r.Lookup("d2")
	assert.True(t, ok)

	r.Remove("d2")
	assert.Equal(t, 0, r.Len())
}
