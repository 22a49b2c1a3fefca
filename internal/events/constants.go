package events

// Event type constants
const (
	// Selection events
	EventTypeSelectionChanged EventType = "selection_changed"

	// Persistence events
	EventTypeAvatarSaved EventType = "avatar_saved"

	// Session lifecycle events
	EventTypeSessionStarted EventType = "session_started"
	EventTypeSessionEnded   EventType = "session_ended"
)

// Listener priorities. Lower runs first.
const (
	PriorityRender  = 100
	PriorityPersist = 200
	PriorityAudit   = 900
)
