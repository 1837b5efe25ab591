package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/interfaces"
	"github.com/ternarybob/kengetal/internal/models"
)

func TestSubscribeAndPublish(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var mu sync.Mutex
	var received []string
	record := func(name string) Handler {
		return func(event interfaces.Event) {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, name+":"+event.Type)
		}
	}

	require.NoError(t, svc.Subscribe(record("ws"), AllEventTypes...))
	require.NoError(t, svc.Subscribe(record("audit"), interfaces.EventAnalysisDeleted))

	assert.Equal(t, 1, svc.SubscriberCount(interfaces.EventAnalysisCompleted))
	assert.Equal(t, 2, svc.SubscriberCount(interfaces.EventAnalysisDeleted))

	svc.Publish(interfaces.Event{Type: interfaces.EventAnalysisCompleted, Payload: &models.Analysis{ID: "ana_1"}})
	svc.Publish(interfaces.Event{Type: interfaces.EventAnalysisDeleted, Payload: map[string]string{"id": "ana_1"}})
	svc.Publish(interfaces.Event{Type: "unknown"})

	assert.Equal(t, []string{
		"ws:" + interfaces.EventAnalysisCompleted,
		"ws:" + interfaces.EventAnalysisDeleted,
		"audit:" + interfaces.EventAnalysisDeleted,
	}, received)
}

func TestSubscribe_Validation(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	assert.Error(t, svc.Subscribe(nil, interfaces.EventAnalysisCompleted))
	assert.Error(t, svc.Subscribe(func(interfaces.Event) {}))
}

func TestPublish_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	called := false
	require.NoError(t, svc.Subscribe(func(interfaces.Event) { panic("boom") }, interfaces.EventAnalysisCompleted))
	require.NoError(t, svc.Subscribe(func(interfaces.Event) { called = true }, interfaces.EventAnalysisCompleted))

	assert.NotPanics(t, func() {
		svc.Publish(interfaces.Event{Type: interfaces.EventAnalysisCompleted})
	})
	assert.True(t, called)
}

func TestLoggerSubscriber(t *testing.T) {
	logger := arbor.NewLogger()
	svc := NewService(logger)
	require.NoError(t, SubscribeLoggerToAllEvents(svc, logger))

	for _, eventType := range AllEventTypes {
		assert.Equal(t, 1, svc.SubscriberCount(eventType))
	}

	assert.NotPanics(t, func() {
		svc.Publish(interfaces.Event{Type: interfaces.EventAnalysisCompleted, Payload: &models.Analysis{ID: "ana_1", ProjectID: "p"}})
		svc.Publish(interfaces.Event{Type: interfaces.EventAnalysisDeleted, Payload: map[string]string{"id": "ana_1"}})
	})
}

func TestClose(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	require.NoError(t, svc.Subscribe(func(interfaces.Event) {}, interfaces.EventAnalysisCompleted))
	require.NoError(t, svc.Close())
	assert.Zero(t, svc.SubscriberCount(interfaces.EventAnalysisCompleted))
}
