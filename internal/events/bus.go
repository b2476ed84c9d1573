package events

import (
	platformevents "leadengine_backend/platform/events"
	"leadengine_backend/platform/logger"
)

// InMemoryBus is a type alias to the platform InMemoryBus
type InMemoryBus = platformevents.InMemoryBus

// WildcardEvent subscribes a handler to every event.
const WildcardEvent = platformevents.WildcardEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
