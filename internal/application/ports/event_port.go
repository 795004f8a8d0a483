package ports

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// EventPublisher define el puerto de salida para notificar mutaciones confirmadas.
// Reemplaza la señal global de "refrescar métricas": los suscriptores (caché del dashboard,
// websocket) reaccionan a eventos explícitos. Publish nunca bloquea al llamador por un suscriptor lento.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.Event)
}

// EventSubscriber permite registrarse a los eventos publicados. La función devuelta cancela la suscripción.
type EventSubscriber interface {
	Subscribe(handler func(entity.Event)) (unsubscribe func())
}

// NopPublisher descarta los eventos (tests y herramientas).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, entity.Event) {}
