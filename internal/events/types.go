package events

import (
	"github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
)

// EventType identifies what happened
type EventType string

// Event is the base interface for all avatar events
type Event interface {
	GetType() EventType
	GetAvatarID() string
	GetOwnerID() string
	IsCancelled() bool
	Cancel()
}

// BaseEvent provides common implementation for all events
type BaseEvent struct {
	Type      EventType
	AvatarID  string
	OwnerID   string
	Cancelled bool
}

func (e *BaseEvent) GetType() EventType  { return e.Type }
func (e *BaseEvent) GetAvatarID() string { return e.AvatarID }
func (e *BaseEvent) GetOwnerID() string  { return e.OwnerID }
func (e *BaseEvent) IsCancelled() bool   { return e.Cancelled }
func (e *BaseEvent) Cancel()             { e.Cancelled = true }

// SelectionChangedEvent fires after every successful selection mutation
type SelectionChangedEvent struct {
	BaseEvent
	Character avatar.Character
}

// NewSelectionChangedEvent builds a selection_changed event
func NewSelectionChangedEvent(avatarID, ownerID string, c avatar.Character) *SelectionChangedEvent {
	return &SelectionChangedEvent{
		BaseEvent: BaseEvent{
			Type:     EventTypeSelectionChanged,
			AvatarID: avatarID,
			OwnerID:  ownerID,
		},
		Character: c,
	}
}

// AvatarSavedEvent fires once a snapshot has been persisted
type AvatarSavedEvent struct {
	BaseEvent
	Document []byte
}

// SessionEvent marks the start or end of an editing session
type SessionEvent struct {
	BaseEvent
}

// NewSessionEvent builds a session_started or session_ended event
func NewSessionEvent(eventType EventType, avatarID, ownerID string) *SessionEvent {
	return &SessionEvent{
		BaseEvent: BaseEvent{
			Type:     eventType,
			AvatarID: avatarID,
			OwnerID:  ownerID,
		},
	}
}

// NewAvatarSavedEvent builds an avatar_saved event carrying the stored document
func NewAvatarSavedEvent(avatarID, ownerID string, document []byte) *AvatarSavedEvent {
	return &AvatarSavedEvent{
		BaseEvent: BaseEvent{
			Type:     EventTypeAvatarSaved,
			AvatarID: avatarID,
			OwnerID:  ownerID,
		},
		Document: document,
	}
}
