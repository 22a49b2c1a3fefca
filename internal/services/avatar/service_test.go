package avatar_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	avatarDomain "github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
	"github.com/KirkDiggler/avatar-forge/internal/domain/cosmetic"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
	"github.com/KirkDiggler/avatar-forge/internal/events"
	"github.com/KirkDiggler/avatar-forge/internal/repositories/avatars"
	mockavatars "github.com/KirkDiggler/avatar-forge/internal/repositories/avatars/mocks"
	avatarService "github.com/KirkDiggler/avatar-forge/internal/services/avatar"
	"github.com/KirkDiggler/avatar-forge/internal/testutils"
	mockuuid "github.com/KirkDiggler/avatar-forge/internal/uuid/mock"
)

type imageMap map[string]image.Image

func (m imageMap) Get(ref string) (image.Image, bool) {
	img, ok := m[ref]
	return img, ok
}

func testImages() imageMap {
	return imageMap{
		testutils.BaseRef: testutils.SolidImage(testutils.CanvasSize, color.White),
		testutils.Hat1Ref: testutils.PixelImage(testutils.CanvasSize, image.Pt(2, 2), color.RGBA{B: 255, A: 255}),
	}
}

type ServiceTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	repo    *mockavatars.MockRepository
	uuidGen *mockuuid.MockGenerator
	bus     *events.Bus
	catalog *cosmetic.Catalog
	service avatarService.Service
	ctx     context.Context

	mu       sync.Mutex
	received []events.Event
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = mockavatars.NewMockRepository(s.ctrl)
	s.uuidGen = mockuuid.NewMockGenerator(s.ctrl)
	s.bus = events.NewBus()
	s.catalog = testutils.CreateTestCatalog(s.T())
	s.ctx = context.Background()
	s.received = nil

	record := func(e events.Event) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.received = append(s.received, e)
		return nil
	}
	for _, t := range []events.EventType{
		events.EventTypeSessionStarted,
		events.EventTypeSessionEnded,
		events.EventTypeAvatarSaved,
	} {
		s.bus.Subscribe(t, &events.ListenerFunc{ListenerID: "test-recorder", ListenerPriority: events.PriorityAudit, Fn: record})
	}

	s.service = avatarService.NewService(&avatarService.ServiceConfig{
		Catalog:       s.catalog,
		Images:        testImages(),
		Repository:    s.repo,
		Bus:           s.bus,
		UUIDGenerator: s.uuidGen,
	})
}

func (s *ServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceTestSuite) eventTypes() []events.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make([]events.EventType, 0, len(s.received))
	for _, e := range s.received {
		types = append(types, e.GetType())
	}
	return types
}

func (s *ServiceTestSuite) expectFreshStart(ownerID, avatarID string) {
	s.repo.EXPECT().GetLatestByOwner(gomock.Any(), ownerID).
		Return(nil, apperr.NotFoundf("no avatar saved for owner '%s'", ownerID))
	s.uuidGen.EXPECT().New().Return(avatarID)
}

func (s *ServiceTestSuite) TestStartFresh() {
	s.expectFreshStart("user-1", "avatar-1")

	got, err := s.service.Start(s.ctx, "user-1")
	s.Require().NoError(err)

	s.Equal("avatar-1", got.ID)
	s.Equal("user-1", got.OwnerID)
	s.Equal(avatarDomain.NewCharacter(), got.Character)
	s.Equal([]events.EventType{events.EventTypeSessionStarted}, s.eventTypes())

	// Second start reuses the open session
	again, err := s.service.Start(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("avatar-1", again.ID)
}

func (s *ServiceTestSuite) TestStartRestoresLatest() {
	saved := avatarDomain.NewCharacter()
	saved.Name = "Pip"
	saved.Equipped["hats"] = []string{"hat1"}
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.repo.EXPECT().GetLatestByOwner(gomock.Any(), "user-1").Return(&avatars.Record{
		ID:        "saved-avatar",
		OwnerID:   "user-1",
		Character: saved,
		CreatedAt: created,
	}, nil)

	got, err := s.service.Start(s.ctx, "user-1")
	s.Require().NoError(err)

	s.Equal("saved-avatar", got.ID)
	s.Equal(saved, got.Character)

	// Later saves keep the original creation time
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *avatars.Record) error {
		s.Equal(created, r.CreatedAt)
		s.Equal("saved-avatar", r.ID)
		return nil
	})
	_, err = s.service.SetName(s.ctx, "user-1", "Pippin")
	s.NoError(err)
}

func (s *ServiceTestSuite) TestStartDiscardsSnapshotThatNoLongerFits() {
	stale := avatarDomain.NewCharacter()
	stale.Equipped["hats"] = []string{"retired-hat"}

	s.repo.EXPECT().GetLatestByOwner(gomock.Any(), "user-1").Return(&avatars.Record{
		ID:        "stale-avatar",
		OwnerID:   "user-1",
		Character: stale,
	}, nil)
	s.uuidGen.EXPECT().New().Return("avatar-2")

	got, err := s.service.Start(s.ctx, "user-1")
	s.Require().NoError(err)

	s.Equal("avatar-2", got.ID)
	s.Empty(got.Character.Equipped)
}

func (s *ServiceTestSuite) TestStartRepositoryError() {
	s.repo.EXPECT().GetLatestByOwner(gomock.Any(), "user-1").Return(nil, errors.New("connection refused"))

	_, err := s.service.Start(s.ctx, "user-1")
	s.Error(err)
	s.Contains(err.Error(), "failed to load avatar")
}

func (s *ServiceTestSuite) TestOwnerRequired() {
	_, err := s.service.Get(s.ctx, "")
	s.True(apperr.IsInvalidArgument(err))
}

func (s *ServiceTestSuite) TestToggleAutosaves() {
	s.expectFreshStart("user-1", "avatar-1")

	var saved *avatars.Record
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *avatars.Record) error {
		saved = r
		r.CreatedAt = time.Now()
		return nil
	})

	got, err := s.service.Toggle(s.ctx, "user-1", "hats", "hat1")
	s.Require().NoError(err)

	s.Equal([]string{"hat1"}, got.Character.Equipped["hats"])
	s.Require().NotNil(saved)
	s.Equal("avatar-1", saved.ID)
	s.Equal("user-1", saved.OwnerID)
	s.Equal(got.Character, saved.Character)

	s.Equal([]events.EventType{events.EventTypeSessionStarted, events.EventTypeAvatarSaved}, s.eventTypes())

	s.mu.Lock()
	savedEvent, ok := s.received[1].(*events.AvatarSavedEvent)
	s.mu.Unlock()
	s.Require().True(ok)
	decoded, err := avatarDomain.UnmarshalDocument(savedEvent.Document)
	s.Require().NoError(err)
	s.Equal(got.Character, decoded)
}

func (s *ServiceTestSuite) TestFailedMutationDoesNotSave() {
	s.expectFreshStart("user-1", "avatar-1")

	_, err := s.service.Toggle(s.ctx, "user-1", "hats", "nope")
	s.True(apperr.IsNotFound(err))

	_, err = s.service.ChooseVariation(s.ctx, "user-1", "arm1", "tentacle")
	s.True(apperr.IsNotFound(err))

	_, err = s.service.SetColor(s.ctx, "user-1", avatarDomain.Channel("alpha"), "3")
	s.True(apperr.IsInvalidArgument(err))
}

func (s *ServiceTestSuite) TestSaveFailureIsReported() {
	s.expectFreshStart("user-1", "avatar-1")
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	_, err := s.service.SetName(s.ctx, "user-1", "Pip")
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to publish change")

	// The change itself was applied
	got, err := s.service.Get(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("Pip", got.Character.Name)
}

func (s *ServiceTestSuite) TestSetColorAndVariation() {
	s.expectFreshStart("user-1", "avatar-1")
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	got, err := s.service.SetColor(s.ctx, "user-1", avatarDomain.ChannelGreen, "15")
	s.Require().NoError(err)
	s.Equal(avatarDomain.ColorMax, got.Character.Color.G)

	got, err = s.service.ChooseVariation(s.ctx, "user-1", "arm1", "both")
	s.Require().NoError(err)
	s.Equal([]string{"arm1"}, got.Character.Equipped["arms"])
	s.Equal("both", got.Character.ActiveVariation["arm1"])
}

func (s *ServiceTestSuite) TestRenderIsCachedUntilChange() {
	s.expectFreshStart("user-1", "avatar-1")

	first, err := s.service.Render(s.ctx, "user-1")
	s.Require().NoError(err)
	s.NotEmpty(first)

	second, err := s.service.Render(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Same(&first[0], &second[0], "cached render is reused")

	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	_, err = s.service.Toggle(s.ctx, "user-1", "hats", "hat1")
	s.Require().NoError(err)

	third, err := s.service.Render(s.ctx, "user-1")
	s.Require().NoError(err)
	s.NotEqual(first, third)
}

func (s *ServiceTestSuite) TestEnd() {
	s.expectFreshStart("user-1", "avatar-1")
	_, err := s.service.Start(s.ctx, "user-1")
	s.Require().NoError(err)

	s.Require().NoError(s.service.End(s.ctx, "user-1"))
	s.Equal([]events.EventType{events.EventTypeSessionStarted, events.EventTypeSessionEnded}, s.eventTypes())

	err = s.service.End(s.ctx, "user-1")
	s.True(apperr.IsNotFound(err))

	// Reopening goes back to the repository
	s.expectFreshStart("user-1", "avatar-9")
	got, err := s.service.Get(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("avatar-9", got.ID)
}

func (s *ServiceTestSuite) TestCatalog() {
	s.Same(s.catalog, s.service.Catalog())
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func TestNewService_RequiredCollaborators(t *testing.T) {
	catalog := testutils.CreateTestCatalog(t)
	repo := avatars.NewInMemoryRepository(nil)

	assert.Panics(t, func() {
		avatarService.NewService(&avatarService.ServiceConfig{Images: testImages(), Repository: repo})
	})
	assert.Panics(t, func() {
		avatarService.NewService(&avatarService.ServiceConfig{Catalog: catalog, Repository: repo})
	})
	assert.Panics(t, func() {
		avatarService.NewService(&avatarService.ServiceConfig{Catalog: catalog, Images: testImages()})
	})
}

func TestService_ResumesAcrossSessions(t *testing.T) {
	ctx := context.Background()
	repo := avatars.NewInMemoryRepository(nil)
	svc := avatarService.NewService(&avatarService.ServiceConfig{
		Catalog:    testutils.CreateTestCatalog(t),
		Images:     testImages(),
		Repository: repo,
	})

	first, err := svc.Toggle(ctx, "user-1", "badges", "b1")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, "user-1", "badges", "b2")
	require.NoError(t, err)
	_, err = svc.ChooseVariation(ctx, "user-1", "arm1", "left")
	require.NoError(t, err)
	require.NoError(t, svc.End(ctx, "user-1"))

	resumed, err := svc.Start(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, resumed.ID)
	assert.Equal(t, []string{"b1", "b2"}, resumed.Character.Equipped["badges"])
	assert.Equal(t, "left", resumed.Character.ActiveVariation["arm1"])
}

func TestService_ConcurrentTogglesKeepCapacity(t *testing.T) {
	ctx := context.Background()
	svc := avatarService.NewService(&avatarService.ServiceConfig{
		Catalog:    testutils.CreateTestCatalog(t),
		Images:     testImages(),
		Repository: avatars.NewInMemoryRepository(nil),
	})

	items := []string{"b1", "b2", "b3"}
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Toggle(ctx, "user-1", "badges", items[i%len(items)])
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got.Character.Equipped["badges"]), 2)
}
