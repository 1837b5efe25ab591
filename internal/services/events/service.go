// Package events fans analysis events out to subscribers such as the
// WebSocket hub and the event log.
package events

import (
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/common"
	"github.com/ternarybob/kengetal/internal/interfaces"
)

// Handler receives a published event
type Handler func(event interfaces.Event)

// Service implements interfaces.EventPublisher with per-type subscriptions
type Service struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
	logger      arbor.ILogger
}

var _ interfaces.EventPublisher = (*Service)(nil)

// NewService creates a new event service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		subscribers: make(map[string][]Handler),
		logger:      logger,
	}
}

// Subscribe registers handler for each of the given event types
func (s *Service) Subscribe(handler Handler, eventTypes ...string) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}
	if len(eventTypes) == 0 {
		return fmt.Errorf("at least one event type is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
		s.logger.Debug().
			Str("event_type", eventType).
			Int("subscriber_count", len(s.subscribers[eventType])).
			Msg("Event handler subscribed")
	}
	return nil
}

// SubscriberCount returns the number of handlers for an event type
func (s *Service) SubscriberCount(eventType string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers[eventType])
}

// Publish calls every handler subscribed to the event type in registration
// order. A panicking handler is logged and does not stop the others.
func (s *Service) Publish(event interfaces.Event) {
	s.mu.RLock()
	handlers := append([]Handler(nil), s.subscribers[event.Type]...)
	s.mu.RUnlock()

	if len(handlers) == 0 {
		s.logger.Debug().
			Str("event_type", event.Type).
			Msg("No subscribers for event")
		return
	}

	for _, h := range handlers {
		s.dispatch(h, event)
	}
}

func (s *Service) dispatch(h Handler, event interfaces.Event) {
	defer common.RecoverPanic(s.logger, "event:"+event.Type)
	h(event)
}

// Close drops all subscriptions
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = make(map[string][]Handler)
	return nil
}
