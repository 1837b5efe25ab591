package interfaces

// Event types published by the analysis service
const (
	EventAnalysisCompleted = "analysis.completed"
	EventAnalysisDeleted   = "analysis.deleted"
)

// Event is a notification pushed to connected UI clients
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// EventPublisher fans events out to subscribers. Publish must not block on slow consumers.
type EventPublisher interface {
	Publish(event Event)
}
