package eventbus

import (
	"context"
	"sync"
)

var (
	globalBus EventBus
	globalMu  sync.RWMutex
)

// Init устанавливает глобальную шину (nil отключает публикацию).
func Init(bus EventBus) {
	globalMu.Lock()
	globalBus = bus
	globalMu.Unlock()
}

// Publish отправляет событие в глобальную шину, если она инициализирована.
func Publish(ctx context.Context, ev *Envelope) error {
	globalMu.RLock()
	bus := globalBus
	globalMu.RUnlock()
	if bus == nil {
		return nil
	}
	return bus.Publish(ctx, ev)
}

// Emit упаковывает payload в Envelope и публикует в глобальную шину.
func Emit(ctx context.Context, source, eventType string, priority int, payload any) error {
	globalMu.RLock()
	bus := globalBus
	globalMu.RUnlock()
	if bus == nil {
		return nil
	}
	ev, err := NewEnvelope(source, eventType, payload)
	if err != nil {
		return err
	}
	ev.Priority = priority
	return bus.Publish(ctx, ev)
}
