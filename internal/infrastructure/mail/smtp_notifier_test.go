package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	block chan struct{}
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.block != nil {
		<-d.block
	}
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPNotifier_OTP(t *testing.T) {
	d := &fakeDialer{}
	n := &SMTPNotifier{from: "no-reply@corp.in", dialer: d}

	require.NoError(t, n.SendOTP(context.Background(), "ops@acme.in", "123456"))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"ops@acme.in"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"no-reply@corp.in"}, d.sent[0].GetHeader("From"))
}

func TestSMTPNotifier_ErrorDelServidor(t *testing.T) {
	d := &fakeDialer{err: errors.New("554 rejected")}
	n := &SMTPNotifier{from: "no-reply@corp.in", dialer: d}
	err := n.SendOTP(context.Background(), "ops@acme.in", "123456")
	assert.ErrorContains(t, err, "554 rejected")
}

func TestSMTPNotifier_Cancelado(t *testing.T) {
	d := &fakeDialer{block: make(chan struct{})}
	defer close(d.block)
	n := &SMTPNotifier{from: "no-reply@corp.in", dialer: d}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := n.SendOTP(ctx, "ops@acme.in", "123456")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMessages(t *testing.T) {
	rec := &entity.OnboardingRecord{ID: "r1", Status: entity.StatusRejected}
	rec.FirstName, rec.LastName = "Asha", "Verma"
	rec.CompanyName = "Verma Textiles"
	rec.CompanyEmail = "accounts@vermatextiles.in"
	rec.RejectionReason = "other"
	rec.RejectionDetails = "Documentos ilegibles"
	rec.Pricing = entity.PricingDetails{
		BasePrice:  decimal.NewFromInt(17500),
		FinalPrice: decimal.NewFromInt(16625),
		Breakdown:  []entity.ServicePrice{{Service: "inventory", Price: decimal.NewFromInt(7500)}},
		Months:     3,
	}

	m := decisionMessage(rec)
	assert.Equal(t, rec.CompanyEmail, m.To)
	assert.Contains(t, m.Body, "rejected")
	assert.Contains(t, m.Body, "Documentos ilegibles")

	m = submissionMessage(rec)
	assert.Contains(t, m.Body, "Hello Asha Verma")
	assert.Contains(t, m.Body, "16625")
	assert.Contains(t, m.Body, "inventory")
}
