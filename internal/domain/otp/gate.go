// Package otp implementa la verificación por código de un solo uso del email de la empresa.
//
// Máquina de estados:
//
//	idle → sent → verifying → verified
//	             verifying → failed → (reenvío) → sent
package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/jhoicas/onboarding-api/internal/domain"
)

// State estado de la verificación.
type State string

const (
	StateIdle      State = "idle"
	StateSent      State = "sent"
	StateVerifying State = "verifying"
	StateVerified  State = "verified"
	StateFailed    State = "failed"
)

// ErrSendCancelled el envío en curso se canceló (el asistente cambió de paso).
var ErrSendCancelled = fmt.Errorf("envío OTP cancelado: %w", context.Canceled)

// Sender puerto de salida que entrega el código al usuario (email).
type Sender interface {
	SendOTP(ctx context.Context, email, code string) error
}

// Config parámetros del gate. Los ceros toman los valores por defecto.
type Config struct {
	Issuer   string
	Cooldown time.Duration    // espera antes de permitir reenvío (60 s)
	TTL      time.Duration    // validez del código (10 min)
	Period   uint             // periodo TOTP en segundos (300)
	Now      func() time.Time // reloj inyectable para tests
}

func (c Config) withDefaults() Config {
	if c.Issuer == "" {
		c.Issuer = "onboarding"
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 60 * time.Second
	}
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
	if c.Period == 0 {
		c.Period = 300
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Snapshot vista de solo lectura del gate.
type Snapshot struct {
	State    State         `json:"state"`
	Email    string        `json:"email,omitempty"`
	ResendIn time.Duration `json:"resend_in"`
}

var emailValidator = validator.New()

// Gate verificación OTP de un asistente. Seguro para uso concurrente.
type Gate struct {
	mu       sync.Mutex
	cfg      Config
	sender   Sender
	state    State
	email    string
	secret   string
	issuedAt time.Time
	resendAt time.Time
	sending  bool
	gen      uint64
	cancel   context.CancelFunc
}

// NewGate crea un gate en estado idle.
func NewGate(sender Sender, cfg Config) *Gate {
	return &Gate{cfg: cfg.withDefaults(), sender: sender, state: StateIdle}
}

// Send envía un código a email. Permitido desde idle, o desde failed cuando terminó la cuenta atrás.
// Un email mal formado o un fallo del proveedor devuelven *domain.SendError y el estado no cambia.
func (g *Gate) Send(ctx context.Context, email string) error {
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return &domain.SendError{Email: email, Reason: "email mal formado"}
	}
	g.mu.Lock()
	switch {
	case g.sending:
		g.mu.Unlock()
		return fmt.Errorf("%w: envío en curso", domain.ErrOTPState)
	case g.state == StateFailed:
		if g.cfg.Now().Before(g.resendAt) {
			g.mu.Unlock()
			return domain.ErrOTPCooldown
		}
	case g.state != StateIdle:
		g.mu.Unlock()
		return fmt.Errorf("%w: estado %s", domain.ErrOTPState, g.state)
	}
	return g.dispatchLocked(ctx, email)
}

// Resend emite un código nuevo al mismo email. Solo cuando la cuenta atrás llegó a cero.
func (g *Gate) Resend(ctx context.Context) error {
	g.mu.Lock()
	if g.sending {
		g.mu.Unlock()
		return fmt.Errorf("%w: envío en curso", domain.ErrOTPState)
	}
	if g.state != StateSent && g.state != StateFailed {
		g.mu.Unlock()
		return fmt.Errorf("%w: estado %s", domain.ErrOTPState, g.state)
	}
	if g.cfg.Now().Before(g.resendAt) {
		g.mu.Unlock()
		return domain.ErrOTPCooldown
	}
	return g.dispatchLocked(ctx, g.email)
}

// dispatchLocked genera el código y lo envía fuera del lock. Requiere g.mu tomado; lo libera.
func (g *Gate) dispatchLocked(ctx context.Context, email string) error {
	now := g.cfg.Now()
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      g.cfg.Issuer,
		AccountName: email,
		Period:      g.cfg.Period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("otp: generar secreto: %w", err)
	}
	secret := key.Secret()
	code, err := totp.GenerateCodeCustom(secret, now, g.validateOpts())
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("otp: generar código: %w", err)
	}

	g.gen++
	gen := g.gen
	sendCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.sending = true
	g.mu.Unlock()

	sendErr := g.sender.SendOTP(sendCtx, email, code)

	g.mu.Lock()
	defer g.mu.Unlock()
	cancel()
	if gen != g.gen {
		// Cancel o Reset llegaron mientras se enviaba: el resultado se descarta.
		return ErrSendCancelled
	}
	g.sending = false
	g.cancel = nil
	if sendErr != nil {
		if errors.Is(sendErr, context.Canceled) {
			return ErrSendCancelled
		}
		return &domain.SendError{Email: email, Reason: "fallo del proveedor", Err: sendErr}
	}
	g.state = StateSent
	g.email = email
	g.secret = secret
	g.issuedAt = now
	g.resendAt = now.Add(g.cfg.Cooldown)
	return nil
}

// Verify comprueba el código. Requiere estado sent. Devuelve true si quedó verificado;
// false si el código es incorrecto o expiró (estado failed, el código introducido se descarta).
func (g *Gate) Verify(code string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateSent {
		return false, fmt.Errorf("%w: estado %s", domain.ErrOTPState, g.state)
	}
	g.state = StateVerifying

	now := g.cfg.Now()
	if now.Sub(g.issuedAt) > g.cfg.TTL {
		g.state = StateFailed
		return false, nil
	}
	ok, err := totp.ValidateCustom(code, g.secret, now, g.validateOpts())
	if err != nil || !ok {
		g.state = StateFailed
		return false, nil
	}
	g.state = StateVerified
	g.secret = ""
	return true, nil
}

// Cancel aborta un envío en curso; su resultado se descarta y el estado no cambia.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
}

// Reset vuelve a idle (p.ej. si cambió el email de la empresa).
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
	g.state = StateIdle
	g.email = ""
	g.secret = ""
	g.issuedAt = time.Time{}
	g.resendAt = time.Time{}
}

func (g *Gate) cancelLocked() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	if g.sending {
		g.gen++
		g.sending = false
	}
}

// Snapshot estado actual y segundos restantes para poder reenviar.
func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	var wait time.Duration
	if !g.resendAt.IsZero() {
		if d := g.resendAt.Sub(g.cfg.Now()); d > 0 {
			wait = d
		}
	}
	return Snapshot{State: g.state, Email: g.email, ResendIn: wait}
}

func (g *Gate) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    g.cfg.Period,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}
