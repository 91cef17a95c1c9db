package events

import (
	"context"

	"github.com/jhoicas/onboarding-api/internal/application/ports"
	"github.com/jhoicas/onboarding-api/pkg/logger"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher registra los eventos en el log (sin brokers configurados).
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador de log.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, evt ports.Event) error {
	p.log.Info().Str("type", evt.Type).Str("key", evt.Key).Time("occurred_at", evt.OccurredAt).Msg("evento")
	return nil
}

// Close no hace nada; existe para que main trate igual a ambos publicadores.
func (p *LogPublisher) Close() error { return nil }
