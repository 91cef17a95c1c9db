// Package worker tareas programadas en segundo plano.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"

	"github.com/jhoicas/onboarding-api/pkg/logger"
)

// DraftPurger lo implementa wizard.WizardUseCase.
type DraftPurger interface {
	PurgeStale(ctx context.Context, before time.Time) (int, error)
}

// CleanupWorker borra periódicamente los borradores sin actividad desde hace más de ttl.
type CleanupWorker struct {
	purger   DraftPurger
	ttl      time.Duration
	schedule string
	log      *logger.Logger
	now      func() time.Time

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCleanupWorker construye el worker. schedule usa la sintaxis de robfig/cron con segundos.
func NewCleanupWorker(purger DraftPurger, ttl time.Duration, schedule string, log *logger.Logger) *CleanupWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &CleanupWorker{
		purger:   purger,
		ttl:      ttl,
		schedule: schedule,
		log:      log,
		now:      time.Now,
		cron:     cron.New(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registra la tarea y arranca el scheduler.
func (w *CleanupWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("worker: ya está en ejecución")
	}
	if err := w.cron.AddFunc(w.schedule, w.runJob); err != nil {
		return fmt.Errorf("worker: programación %q inválida: %w", w.schedule, err)
	}
	w.cron.Start()
	w.running = true
	w.log.Info().Str("schedule", w.schedule).Dur("ttl", w.ttl).Msg("limpieza de borradores programada")
	return nil
}

// Stop detiene el scheduler y cancela una ejecución en curso.
func (w *CleanupWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.cron.Stop()
	w.cancel()
	w.running = false
	w.log.Info().Msg("limpieza de borradores detenida")
}

func (w *CleanupWorker) runJob() {
	ctx, cancel := context.WithTimeout(w.ctx, time.Minute)
	defer cancel()
	if _, err := w.RunOnce(ctx); err != nil {
		w.log.Error().Err(err).Msg("limpieza de borradores")
	}
}

// RunOnce ejecuta una pasada de limpieza y devuelve cuántos borradores borró.
func (w *CleanupWorker) RunOnce(ctx context.Context) (int, error) {
	before := w.now().Add(-w.ttl)
	n, err := w.purger.PurgeStale(ctx, before)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		w.log.Info().Int("purged", n).Time("before", before).Msg("borradores vencidos eliminados")
	}
	return n, nil
}
