package v1

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citypulse/events-api/internal/api/middleware"
	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/service"
)

var (
	testStaff   = domain.User{ID: 1, Email: "staff@example.com", Role: domain.RoleStaff}
	testRegular = domain.User{ID: 2, Email: "user@example.com", Role: domain.RoleUser}
)

type fakeUserService struct {
	users map[uint]domain.User
	err   error
}

func newFakeUserService(users ...domain.User) *fakeUserService {
	svc := &fakeUserService{users: make(map[uint]domain.User)}
	for _, u := range users {
		svc.users[u.ID] = u
	}

	return svc
}

func (s *fakeUserService) GetUser(_ context.Context, id uint) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}

	user, ok := s.users[id]
	if !ok {
		return domain.User{}, service.ErrUserNotFound
	}

	return user, nil
}

// authAs mimics the JWT middleware by planting the user ID directly.
func authAs(id uint) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(middleware.ContextKeyUserID, id)
		ctx.Next()
	}
}

type fakeEventService struct {
	events     map[uint]domain.Event
	lastCaller *domain.User
	lastFilter domain.EventFilter
	created    *domain.Event
	author     domain.User
	imported   int
}

func newFakeEventService(events ...domain.Event) *fakeEventService {
	svc := &fakeEventService{events: make(map[uint]domain.Event)}
	for _, e := range events {
		svc.events[e.ID] = e
	}

	return svc
}

func (s *fakeEventService) visible(event domain.Event, caller *domain.User) bool {
	return event.IsPublished() || (caller != nil && caller.IsStaff())
}

func (s *fakeEventService) ListEvents(_ context.Context, filter domain.EventFilter, caller *domain.User) ([]domain.Event, int64, error) {
	s.lastCaller = caller
	s.lastFilter = filter

	var matched []domain.Event
	for _, event := range s.events {
		if s.visible(event, caller) {
			matched = append(matched, event)
		}
	}

	return matched, int64(len(matched)), nil
}

func (s *fakeEventService) GetEvent(_ context.Context, id uint, caller *domain.User) (domain.Event, error) {
	event, ok := s.events[id]
	if !ok || !s.visible(event, caller) {
		return domain.Event{}, service.ErrEventNotFound
	}

	return event, nil
}

func (s *fakeEventService) CreateEvent(_ context.Context, event domain.Event, author domain.User) (domain.Event, error) {
	event.ID = 42
	event.AuthorID = author.ID
	s.created = &event
	s.author = author

	return event, nil
}

func (s *fakeEventService) UpdateEvent(_ context.Context, id uint, event domain.Event) (domain.Event, error) {
	if _, ok := s.events[id]; !ok {
		return domain.Event{}, service.ErrEventNotFound
	}

	event.ID = id
	s.events[id] = event

	return event, nil
}

func (s *fakeEventService) PatchEvent(_ context.Context, id uint, patch service.EventPatch) (domain.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return domain.Event{}, service.ErrEventNotFound
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Status != nil {
		event.Status = *patch.Status
	}
	s.events[id] = event

	return event, nil
}

func (s *fakeEventService) DeleteEvent(_ context.Context, id uint) error {
	if _, ok := s.events[id]; !ok {
		return service.ErrEventNotFound
	}
	delete(s.events, id)

	return nil
}

func (s *fakeEventService) AttachImage(_ context.Context, eventID uint, filename string, _ []byte) (domain.EventImage, error) {
	if _, ok := s.events[eventID]; !ok {
		return domain.EventImage{}, service.ErrEventNotFound
	}

	return domain.EventImage{ID: 1, EventID: eventID, Image: "events/" + filename}, nil
}

func (s *fakeEventService) ExportEvents(_ context.Context, filter domain.EventFilter, caller *domain.User) ([]domain.Event, error) {
	events, _, err := s.ListEvents(context.Background(), filter, caller)

	return events, err
}

func (s *fakeEventService) ImportEvents(_ context.Context, r io.Reader, _ domain.User) (int, error) {
	if _, err := io.ReadAll(r); err != nil {
		return 0, err
	}

	return s.imported, nil
}

func publishedEvent(id uint, title string) domain.Event {
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	return domain.Event{
		ID:         id,
		Title:      title,
		StartDate:  start,
		EndDate:    start.Add(2 * time.Hour),
		AuthorID:   1,
		LocationID: 1,
		Status:     domain.StatusPublished,
	}
}
