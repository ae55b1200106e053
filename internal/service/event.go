package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/repository"
	"github.com/citypulse/events-api/internal/spreadsheet"
	"github.com/citypulse/events-api/internal/task"
	"github.com/citypulse/events-api/internal/thumbnail"
)

var (
	ErrEventNotFound = repository.ErrEventNotFound

	ErrBadImage        = errors.New("image cannot be decoded")
	ErrInvalidWorkbook = errors.New("invalid workbook")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, int64, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id uint) error
	FindDueDrafts(ctx context.Context, now time.Time) ([]domain.Event, error)
	PublishIfDraft(ctx context.Context, id uint) (bool, error)
	FindPublished(ctx context.Context) ([]domain.Event, error)
	AddImage(ctx context.Context, image domain.EventImage) (domain.EventImage, error)
	UpsertWeather(ctx context.Context, weather domain.WeatherData) error
	ImportEvents(ctx context.Context, authorID uint, rows []domain.ImportedEvent) (int, error)
}

type TaskQueue interface {
	Enqueue(ctx context.Context, t task.Task) error
}

type MediaStore interface {
	Save(subdir, originalName string, data []byte) (string, error)
}

// EventPatch carries the fields of a partial update; nil means unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	LocationID  *uint
	Rating      *uint
	Status      *domain.EventStatus
}

type EventService struct {
	repo         EventRepository
	locationRepo LocationRepository
	userRepo     UserRepository
	queue        TaskQueue
	media        MediaStore
}

func NewEventService(repo EventRepository, locationRepo LocationRepository, userRepo UserRepository, queue TaskQueue, media MediaStore) *EventService {
	return &EventService{
		repo:         repo,
		locationRepo: locationRepo,
		userRepo:     userRepo,
		queue:        queue,
		media:        media,
	}
}

// ListEvents applies the caller's visibility: anonymous and regular users
// see published events only, staff sees everything.
func (s *EventService) ListEvents(ctx context.Context, filter domain.EventFilter, caller *domain.User) ([]domain.Event, int64, error) {
	filter.IncludeDrafts = caller != nil && caller.IsStaff()

	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.List -> %w", err)
	}

	return events, total, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint, caller *domain.User) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	// Drafts are invisible to everyone but staff.
	if !event.IsPublished() && (caller == nil || !caller.IsStaff()) {
		return domain.Event{}, ErrEventNotFound
	}

	return event, nil
}

// CreateEvent stores a new event. The author is always the caller, whatever
// the request claimed, and pub_date is set at creation time.
func (s *EventService) CreateEvent(ctx context.Context, event domain.Event, author domain.User) (domain.Event, error) {
	if _, err := s.locationRepo.FindByID(ctx, event.LocationID); err != nil {
		return domain.Event{}, fmt.Errorf("s.locationRepo.FindByID -> %w", err)
	}

	event.AuthorID = author.ID
	event.PubDate = time.Now()
	if event.Status == "" {
		event.Status = domain.StatusDraft
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	if created.IsPublished() {
		s.enqueuePublishEmail(ctx, created)
	}

	return created, nil
}

// UpdateEvent replaces the mutable fields. A draft turning published here
// enqueues one notification email; the scheduled sweep never emails.
func (s *EventService) UpdateEvent(ctx context.Context, id uint, event domain.Event) (domain.Event, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if _, err = s.locationRepo.FindByID(ctx, event.LocationID); err != nil {
		return domain.Event{}, fmt.Errorf("s.locationRepo.FindByID -> %w", err)
	}

	event.ID = current.ID
	event.AuthorID = current.AuthorID
	event.PubDate = current.PubDate

	// An update without a status keeps the current one; status never leaves
	// the draft/published pair.
	if event.Status == "" {
		event.Status = current.Status
	}

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	if !current.IsPublished() && updated.IsPublished() {
		s.enqueuePublishEmail(ctx, updated)
	}

	return updated, nil
}

func (s *EventService) PatchEvent(ctx context.Context, id uint, patch EventPatch) (domain.Event, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	event := current
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.StartDate != nil {
		event.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		event.EndDate = *patch.EndDate
	}
	if patch.LocationID != nil {
		if _, err = s.locationRepo.FindByID(ctx, *patch.LocationID); err != nil {
			return domain.Event{}, fmt.Errorf("s.locationRepo.FindByID -> %w", err)
		}
		event.LocationID = *patch.LocationID
	}
	if patch.Rating != nil {
		event.Rating = *patch.Rating
	}
	if patch.Status != nil {
		event.Status = *patch.Status
	}

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	if !current.IsPublished() && updated.IsPublished() {
		s.enqueuePublishEmail(ctx, updated)
	}

	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// AttachImage stores the upload and derives the thumbnail exactly once, at
// attach time. Unsupported extensions are stored without one; an upload
// that claims to be JPEG/PNG but cannot be decoded is rejected.
func (s *EventService) AttachImage(ctx context.Context, eventID uint, filename string, data []byte) (domain.EventImage, error) {
	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return domain.EventImage{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	thumb, err := thumbnail.Generate(data, filename)
	if err != nil {
		return domain.EventImage{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	imagePath, err := s.media.Save("events", filename, data)
	if err != nil {
		return domain.EventImage{}, fmt.Errorf("s.media.Save -> %w", err)
	}

	var thumbPath string
	if thumb != nil {
		thumbPath, err = s.media.Save("events/thumbnails", filename, thumb)
		if err != nil {
			return domain.EventImage{}, fmt.Errorf("s.media.Save -> %w", err)
		}
	}

	image, err := s.repo.AddImage(ctx, domain.EventImage{
		EventID:   eventID,
		Image:     imagePath,
		Thumbnail: thumbPath,
	})
	if err != nil {
		return domain.EventImage{}, fmt.Errorf("s.repo.AddImage -> %w", err)
	}

	return image, nil
}

// ExportEvents returns the full filtered set visible to the caller, without
// pagination, for the spreadsheet download.
func (s *EventService) ExportEvents(ctx context.Context, filter domain.EventFilter, caller *domain.User) ([]domain.Event, error) {
	filter.Page = 0
	filter.PageSize = 0

	events, _, err := s.ListEvents(ctx, filter, caller)
	if err != nil {
		return nil, fmt.Errorf("s.ListEvents -> %w", err)
	}

	return events, nil
}

// ImportEvents bulk-creates published events owned by the importer. The
// whole workbook is one transaction; a malformed row aborts everything.
func (s *EventService) ImportEvents(ctx context.Context, r io.Reader, importer domain.User) (int, error) {
	rows, err := spreadsheet.ReadEvents(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}

	created, err := s.repo.ImportEvents(ctx, importer.ID, rows)
	if err != nil {
		return 0, fmt.Errorf("s.repo.ImportEvents -> %w", err)
	}

	return created, nil
}

// enqueuePublishEmail is fire-and-forget: the caller's response never waits
// on the queue, and enqueue failures are only logged.
func (s *EventService) enqueuePublishEmail(ctx context.Context, event domain.Event) {
	author, err := s.userRepo.FindByID(ctx, event.AuthorID)
	if err != nil {
		zap.L().Error("publish email skipped, author lookup failed",
			zap.Uint("event_id", event.ID),
			zap.Error(err))

		return
	}

	err = s.queue.Enqueue(ctx, task.Task{
		Type:      task.TypePublishEmail,
		EventID:   event.ID,
		Recipient: author.Email,
		Subject:   fmt.Sprintf("Your event %q has been published", event.Title),
		Message: fmt.Sprintf("The event %q is now publicly visible. It runs from %v to %v.",
			event.Title, event.StartDate.Format(time.RFC1123), event.EndDate.Format(time.RFC1123)),
	})
	if err != nil {
		zap.L().Error("publish email enqueue failed",
			zap.Uint("event_id", event.ID),
			zap.Error(err))
	}
}
