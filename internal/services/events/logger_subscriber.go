package events

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/interfaces"
	"github.com/ternarybob/kengetal/internal/models"
)

// AllEventTypes lists every event the analysis service publishes
var AllEventTypes = []string{
	interfaces.EventAnalysisCompleted,
	interfaces.EventAnalysisDeleted,
}

// NewLoggerSubscriber returns a handler that logs events with their analysis fields
func NewLoggerSubscriber(logger arbor.ILogger) Handler {
	return func(event interfaces.Event) {
		logEvent := logger.Debug().Str("event_type", event.Type)

		switch p := event.Payload.(type) {
		case *models.Analysis:
			logEvent = logEvent.
				Str("analysis_id", p.ID).
				Str("project_id", p.ProjectID).
				Str("overall_health", string(p.Result.Summary.OverallHealth))
		case map[string]string:
			for _, key := range []string{"id", "project_id"} {
				if v, ok := p[key]; ok {
					logEvent = logEvent.Str(key, v)
				}
			}
		}

		logEvent.Msg("Event published")
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to every analysis event type
func SubscribeLoggerToAllEvents(service *Service, logger arbor.ILogger) error {
	return service.Subscribe(NewLoggerSubscriber(logger), AllEventTypes...)
}
