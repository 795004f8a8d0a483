package events

import (
	"context"
	"sync"

	"github.com/jhoicas/estoque-api/internal/application/ports"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

var (
	_ ports.EventPublisher  = (*Bus)(nil)
	_ ports.EventSubscriber = (*Bus)(nil)
)

// Bus distribuye eventos en proceso de forma síncrona. Los handlers deben ser rápidos
// (incrementar una generación, encolar en un canal); un panic en un handler se registra y no afecta a los demás.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(entity.Event)
	log      *logger.Logger
}

// NewBus construye el bus.
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{handlers: make(map[int]func(entity.Event)), log: log.Component("events")}
}

// Subscribe registra handler y devuelve la función para darse de baja.
func (b *Bus) Subscribe(handler func(entity.Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish entrega el evento a todos los suscriptores actuales.
func (b *Bus) Publish(_ context.Context, event entity.Event) {
	b.mu.RLock()
	handlers := make([]func(entity.Event), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	b.log.Debug().Str("type", event.Type).Str("entity", event.Entity).Str("id", event.EntityID).Msg("evento publicado")
	for _, h := range handlers {
		b.deliver(h, event)
	}
}

func (b *Bus) deliver(h func(entity.Event), event entity.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("type", event.Type).Msg("handler de evento falló")
		}
	}()
	h(event)
}
