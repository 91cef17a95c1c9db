package ports

import (
	"context"
	"time"
)

// Tipos de evento publicados.
const (
	EventOnboardingSubmitted     = "onboarding.submitted"
	EventOnboardingStatusChanged = "onboarding.status_changed"
)

// Event evento de dominio. Key agrupa por solicitud (partición).
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// EventPublisher define el puerto de salida para publicar eventos (Kafka o log).
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}
