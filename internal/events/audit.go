package events

import "log"

var auditedTypes = []EventType{
	EventTypeSessionStarted,
	EventTypeSelectionChanged,
	EventTypeAvatarSaved,
	EventTypeSessionEnded,
}

// AuditLogger writes one line per avatar event. It runs after the render and persist
// listeners, so a selection change it logs has already been saved.
type AuditLogger struct {
	logger *log.Logger
}

// NewAuditLogger creates an audit listener. A nil logger uses the standard logger.
func NewAuditLogger(logger *log.Logger) *AuditLogger {
	if logger == nil {
		logger = log.Default()
	}
	return &AuditLogger{logger: logger}
}

func (a *AuditLogger) ID() string    { return "audit-log" }
func (a *AuditLogger) Priority() int { return PriorityAudit }

// HandleEvent logs the event and never fails
func (a *AuditLogger) HandleEvent(event Event) error {
	switch ev := event.(type) {
	case *AvatarSavedEvent:
		a.logger.Printf("Audit: %s avatar=%s owner=%s bytes=%d", ev.GetType(), ev.GetAvatarID(), ev.GetOwnerID(), len(ev.Document))
	case *SelectionChangedEvent:
		a.logger.Printf("Audit: %s avatar=%s owner=%s equipped=%d", ev.GetType(), ev.GetAvatarID(), ev.GetOwnerID(), len(ev.Character.Equipped))
	default:
		a.logger.Printf("Audit: %s avatar=%s owner=%s", event.GetType(), event.GetAvatarID(), event.GetOwnerID())
	}
	return nil
}

// Subscribe registers the logger for every avatar event type
func (a *AuditLogger) Subscribe(bus *Bus) {
	for _, eventType := range auditedTypes {
		bus.Subscribe(eventType, a)
	}
}
