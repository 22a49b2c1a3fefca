package avatar

//go:generate mockgen -destination=mock/mock_service.go -package=mockavatar -source=service.go

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/KirkDiggler/avatar-forge/internal/compositor"
	avatarDomain "github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
	"github.com/KirkDiggler/avatar-forge/internal/domain/cosmetic"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
	"github.com/KirkDiggler/avatar-forge/internal/events"
	"github.com/KirkDiggler/avatar-forge/internal/repositories/avatars"
	"github.com/KirkDiggler/avatar-forge/internal/uuid"
)

const defaultSaveTimeout = 5 * time.Second

// Service hosts one editing session per owner. Every method other than Start and End
// opens the owner's session on demand.
type Service interface {
	// Start opens an editing session, restoring the owner's latest saved avatar
	Start(ctx context.Context, ownerID string) (*Avatar, error)

	// Get returns the current avatar
	Get(ctx context.Context, ownerID string) (*Avatar, error)

	// SetName stores the display name
	SetName(ctx context.Context, ownerID, name string) (*Avatar, error)

	// SetColor sets one tint channel from user input
	SetColor(ctx context.Context, ownerID string, channel avatarDomain.Channel, value string) (*Avatar, error)

	// Toggle equips or unequips an item
	Toggle(ctx context.Context, ownerID, categoryID, itemID string) (*Avatar, error)

	// ChooseVariation picks a variation, equipping the item if needed
	ChooseVariation(ctx context.Context, ownerID, itemID, key string) (*Avatar, error)

	// Render returns the avatar as PNG bytes. The slice must not be modified.
	Render(ctx context.Context, ownerID string) ([]byte, error)

	// Catalog returns the catalog every session edits against
	Catalog() *cosmetic.Catalog

	// End closes the owner's session. Saved snapshots are kept.
	End(ctx context.Context, ownerID string) error
}

// Avatar is a view of an editing session
type Avatar struct {
	ID        string
	OwnerID   string
	Character avatarDomain.Character
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Catalog       *cosmetic.Catalog      // Required
	Images        compositor.ImageSource // Required
	Repository    avatars.Repository     // Required
	Bus           *events.Bus            // Optional, a private bus is used if nil
	UUIDGenerator uuid.Generator         // Optional, will use default if nil
	SaveTimeout   time.Duration          // Optional, bounds each autosave
}

type session struct {
	mu        sync.Mutex
	id        string
	ownerID   string
	createdAt time.Time
	state     *avatarDomain.State

	// Set by the change listener during a mutation
	publishErr error
	rendered   []byte
}

func (s *session) view() *Avatar {
	return &Avatar{
		ID:        s.id,
		OwnerID:   s.ownerID,
		Character: s.state.Snapshot(),
	}
}

// service implements the Service interface
type service struct {
	catalog       *cosmetic.Catalog
	images        compositor.ImageSource
	repository    avatars.Repository
	bus           *events.Bus
	uuidGenerator uuid.Generator
	saveTimeout   time.Duration

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewService creates a new avatar service and subscribes its listeners to the bus
func NewService(cfg *ServiceConfig) Service {
	if cfg.Catalog == nil {
		panic("catalog is required")
	}
	if cfg.Images == nil {
		panic("image source is required")
	}
	if cfg.Repository == nil {
		panic("repository is required")
	}

	svc := &service{
		catalog:       cfg.Catalog,
		images:        cfg.Images,
		repository:    cfg.Repository,
		bus:           cfg.Bus,
		uuidGenerator: cfg.UUIDGenerator,
		saveTimeout:   cfg.SaveTimeout,
		sessions:      make(map[string]*session),
	}

	if svc.bus == nil {
		svc.bus = events.NewBus()
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.saveTimeout <= 0 {
		svc.saveTimeout = defaultSaveTimeout
	}

	svc.bus.Subscribe(events.EventTypeSelectionChanged, &events.ListenerFunc{
		ListenerID:       "avatar-render-invalidate",
		ListenerPriority: events.PriorityRender,
		Fn:               svc.invalidateRender,
	})
	svc.bus.Subscribe(events.EventTypeSelectionChanged, &events.ListenerFunc{
		ListenerID:       "avatar-autosave",
		ListenerPriority: events.PriorityPersist,
		Fn:               svc.autosave,
	})

	return svc
}

// Start opens an editing session
func (s *service) Start(ctx context.Context, ownerID string) (*Avatar, error) {
	sess, err := s.acquire(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Get returns the current avatar
func (s *service) Get(ctx context.Context, ownerID string) (*Avatar, error) {
	return s.Start(ctx, ownerID)
}

// SetName stores the display name
func (s *service) SetName(ctx context.Context, ownerID, name string) (*Avatar, error) {
	return s.mutate(ctx, ownerID, func(state *avatarDomain.State) error {
		state.SetName(name)
		return nil
	})
}

// SetColor sets one tint channel
func (s *service) SetColor(ctx context.Context, ownerID string, channel avatarDomain.Channel, value string) (*Avatar, error) {
	return s.mutate(ctx, ownerID, func(state *avatarDomain.State) error {
		return state.SetColorComponent(channel, value)
	})
}

// Toggle equips or unequips an item
func (s *service) Toggle(ctx context.Context, ownerID, categoryID, itemID string) (*Avatar, error) {
	return s.mutate(ctx, ownerID, func(state *avatarDomain.State) error {
		return state.Toggle(categoryID, itemID)
	})
}

// ChooseVariation picks a variation
func (s *service) ChooseVariation(ctx context.Context, ownerID, itemID, key string) (*Avatar, error) {
	return s.mutate(ctx, ownerID, func(state *avatarDomain.State) error {
		return state.ChooseVariation(itemID, key)
	})
}

// Render returns the avatar as PNG, reusing the last render until the selection changes
func (s *service) Render(ctx context.Context, ownerID string) ([]byte, error) {
	sess, err := s.acquire(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.rendered != nil {
		return sess.rendered, nil
	}

	data, err := compositor.RenderPNG(sess.state.Snapshot(), s.catalog, s.images)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to render avatar '%s'", sess.id)
	}
	sess.rendered = data
	return data, nil
}

// Catalog returns the shared catalog
func (s *service) Catalog() *cosmetic.Catalog {
	return s.catalog
}

// End closes the owner's session
func (s *service) End(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[ownerID]
	delete(s.sessions, ownerID)
	s.mu.Unlock()

	if !ok {
		return apperr.NotFoundf("no editing session for owner '%s'", ownerID).WithMeta("owner_id", ownerID)
	}

	if err := s.bus.Emit(events.NewSessionEvent(events.EventTypeSessionEnded, sess.id, ownerID)); err != nil {
		log.Printf("AvatarService: session end listeners failed for %s: %v", ownerID, err)
	}
	return nil
}

func (s *service) mutate(ctx context.Context, ownerID string, fn func(*avatarDomain.State) error) (*Avatar, error) {
	sess, err := s.acquire(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.publishErr = nil
	if err := fn(sess.state); err != nil {
		return nil, err
	}
	// The change stays applied even when a listener fails; the next save carries it
	if sess.publishErr != nil {
		return nil, apperr.Wrapf(sess.publishErr, "failed to publish change for avatar '%s'", sess.id)
	}

	return sess.view(), nil
}

func (s *service) lookup(ownerID string) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[ownerID]
}

// acquire returns the owner's session, opening it if needed
func (s *service) acquire(ctx context.Context, ownerID string) (*session, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	if sess := s.lookup(ownerID); sess != nil {
		return sess, nil
	}

	sess, err := s.open(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if existing, ok := s.sessions[ownerID]; ok {
		// Another caller opened it first
		s.mu.Unlock()
		return existing, nil
	}
	s.sessions[ownerID] = sess
	s.mu.Unlock()

	if err := s.bus.Emit(events.NewSessionEvent(events.EventTypeSessionStarted, sess.id, ownerID)); err != nil {
		log.Printf("AvatarService: session start listeners failed for %s: %v", ownerID, err)
	}

	return sess, nil
}

// open builds a session from the owner's latest snapshot, or a fresh avatar when there
// is none or it no longer fits the catalog
func (s *service) open(ctx context.Context, ownerID string) (*session, error) {
	state := avatarDomain.NewState(&avatarDomain.StateConfig{Catalog: s.catalog})
	sess := &session{ownerID: ownerID, state: state}

	record, err := s.repository.GetLatestByOwner(ctx, ownerID)
	switch {
	case err == nil:
		if restoreErr := state.Restore(record.Character); restoreErr != nil {
			log.Printf("AvatarService: discarding saved avatar %s for %s: %v", record.ID, ownerID, restoreErr)
		} else {
			sess.id = record.ID
			sess.createdAt = record.CreatedAt
		}
	case apperr.IsNotFound(err):
	default:
		return nil, apperr.Wrapf(err, "failed to load avatar for owner '%s'", ownerID)
	}

	if sess.id == "" {
		sess.id = s.uuidGenerator.New()
	}

	// Wired after restore so opening a session does not count as a change
	state.OnChange(func(c avatarDomain.Character) {
		sess.publishErr = s.bus.Emit(events.NewSelectionChangedEvent(sess.id, sess.ownerID, c))
	})

	return sess, nil
}

// invalidateRender drops the cached PNG of the changed session.
// Runs while the mutating caller holds the session lock.
func (s *service) invalidateRender(e events.Event) error {
	sess := s.lookup(e.GetOwnerID())
	if sess == nil || sess.id != e.GetAvatarID() {
		return nil
	}
	sess.rendered = nil
	return nil
}

// autosave persists the snapshot carried by a selection_changed event
func (s *service) autosave(e events.Event) error {
	ev, ok := e.(*events.SelectionChangedEvent)
	if !ok {
		return nil
	}
	sess := s.lookup(ev.GetOwnerID())
	if sess == nil || sess.id != ev.GetAvatarID() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	record := &avatars.Record{
		ID:        sess.id,
		OwnerID:   sess.ownerID,
		Character: ev.Character,
		CreatedAt: sess.createdAt,
	}
	if err := s.repository.Save(ctx, record); err != nil {
		return err
	}
	sess.createdAt = record.CreatedAt

	document, err := avatarDomain.MarshalDocument(ev.Character)
	if err != nil {
		return err
	}
	return s.bus.Emit(events.NewAvatarSavedEvent(sess.id, sess.ownerID, document))
}
