package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/onboarding-api/pkg/logger"
)

type fakePurger struct {
	before time.Time
	n      int
	err    error
}

func (p *fakePurger) PurgeStale(_ context.Context, before time.Time) (int, error) {
	p.before = before
	return p.n, p.err
}

func TestRunOnce_CalculaCorte(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := &fakePurger{n: 3}
	w := NewCleanupWorker(p, 72*time.Hour, "0 */15 * * * *", logger.Nop())
	w.now = func() time.Time { return now }

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, now.Add(-72*time.Hour), p.before)
}

func TestRunOnce_Error(t *testing.T) {
	p := &fakePurger{err: errors.New("db caída")}
	w := NewCleanupWorker(p, time.Hour, "0 */15 * * * *", logger.Nop())
	_, err := w.RunOnce(context.Background())
	assert.EqualError(t, err, "db caída")
}

func TestStart_ProgramacionInvalida(t *testing.T) {
	w := NewCleanupWorker(&fakePurger{}, time.Hour, "cada rato", logger.Nop())
	assert.Error(t, w.Start())
}

func TestStartStop_SinFugas(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewCleanupWorker(&fakePurger{}, time.Hour, "0 */15 * * * *", logger.Nop())
	require.NoError(t, w.Start())
	assert.Error(t, w.Start())
	w.Stop()
	w.Stop()
}
