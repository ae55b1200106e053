package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/spreadsheet"
	"github.com/citypulse/events-api/internal/task"
)

func newTestEventService(t *testing.T) (*EventService, *fakeEventRepo, *fakeTaskQueue) {
	t.Helper()

	repo := newFakeEventRepo()
	locationRepo := newFakeLocationRepo(domain.Location{ID: 1, Name: "Town Hall", Lat: 50, Lon: 8})
	userRepo := newFakeUserRepo(
		domain.User{ID: 1, Email: "staff@example.com", Role: domain.RoleStaff},
		domain.User{ID: 2, Email: "user@example.com", Role: domain.RoleUser},
	)
	queue := &fakeTaskQueue{}
	media := &fakeMediaStore{}

	return NewEventService(repo, locationRepo, userRepo, queue, media), repo, queue
}

func draftEvent() domain.Event {
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	return domain.Event{
		Title:      "Draft event",
		StartDate:  start,
		EndDate:    start.Add(2 * time.Hour),
		AuthorID:   1,
		LocationID: 1,
		Status:     domain.StatusDraft,
	}
}

func TestListEventsVisibility(t *testing.T) {
	staff := domain.User{ID: 1, Role: domain.RoleStaff}
	regular := domain.User{ID: 2, Role: domain.RoleUser}

	tests := []struct {
		name          string
		caller        *domain.User
		includeDrafts bool
	}{
		{name: "anonymous", caller: nil, includeDrafts: false},
		{name: "regular user", caller: &regular, includeDrafts: false},
		{name: "staff", caller: &staff, includeDrafts: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _ := newTestEventService(t)

			_, _, err := svc.ListEvents(context.Background(), domain.EventFilter{}, tc.caller)
			require.NoError(t, err)

			assert.Equal(t, tc.includeDrafts, repo.lastFilter.IncludeDrafts)
		})
	}
}

func TestGetEventHidesDraftsFromNonStaff(t *testing.T) {
	svc, repo, _ := newTestEventService(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, draftEvent())
	require.NoError(t, err)

	_, err = svc.GetEvent(ctx, created.ID, nil)
	assert.ErrorIs(t, err, ErrEventNotFound)

	regular := domain.User{ID: 2, Role: domain.RoleUser}
	_, err = svc.GetEvent(ctx, created.ID, &regular)
	assert.ErrorIs(t, err, ErrEventNotFound)

	staff := domain.User{ID: 1, Role: domain.RoleStaff}
	got, err := svc.GetEvent(ctx, created.ID, &staff)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateEventDefaults(t *testing.T) {
	svc, _, queue := newTestEventService(t)

	event := draftEvent()
	event.Status = ""
	event.AuthorID = 99 // whatever the payload claimed

	created, err := svc.CreateEvent(context.Background(), event, domain.User{ID: 1, Role: domain.RoleStaff})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, created.Status)
	assert.Equal(t, uint(1), created.AuthorID)
	assert.False(t, created.PubDate.IsZero())
	assert.Empty(t, queue.tasks)
}

func TestCreateEventUnknownLocation(t *testing.T) {
	svc, _, _ := newTestEventService(t)

	event := draftEvent()
	event.LocationID = 42

	_, err := svc.CreateEvent(context.Background(), event, domain.User{ID: 1})

	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestCreateEventPublishedEnqueuesEmail(t *testing.T) {
	svc, _, queue := newTestEventService(t)

	event := draftEvent()
	event.Status = domain.StatusPublished

	created, err := svc.CreateEvent(context.Background(), event, domain.User{ID: 1})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, task.TypePublishEmail, queue.tasks[0].Type)
	assert.Equal(t, created.ID, queue.tasks[0].EventID)
	assert.Equal(t, "staff@example.com", queue.tasks[0].Recipient)
}

func TestUpdateEventPublishTransition(t *testing.T) {
	svc, repo, queue := newTestEventService(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, draftEvent())
	require.NoError(t, err)

	update := created
	update.Status = domain.StatusPublished

	updated, err := svc.UpdateEvent(ctx, created.ID, update)
	require.NoError(t, err)
	require.True(t, updated.IsPublished())
	require.Len(t, queue.tasks, 1)

	// A second update of an already published event sends nothing.
	updated.Description = "changed again"
	_, err = svc.UpdateEvent(ctx, created.ID, updated)
	require.NoError(t, err)
	assert.Len(t, queue.tasks, 1)
}

func TestUpdateEventEmptyStatusKeepsCurrent(t *testing.T) {
	tests := []struct {
		name    string
		current domain.EventStatus
	}{
		{name: "draft stays draft", current: domain.StatusDraft},
		{name: "published stays published", current: domain.StatusPublished},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, queue := newTestEventService(t)
			ctx := context.Background()

			event := draftEvent()
			event.Status = tc.current
			created, err := repo.Create(ctx, event)
			require.NoError(t, err)

			update := created
			update.Status = ""

			updated, err := svc.UpdateEvent(ctx, created.ID, update)
			require.NoError(t, err)

			assert.Equal(t, tc.current, updated.Status)
			assert.Empty(t, queue.tasks)
		})
	}
}

func TestUpdateEventPreservesAuthorAndPubDate(t *testing.T) {
	svc, repo, _ := newTestEventService(t)
	ctx := context.Background()

	event := draftEvent()
	event.PubDate = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, event)
	require.NoError(t, err)

	update := created
	update.AuthorID = 99
	update.PubDate = time.Now()

	updated, err := svc.UpdateEvent(ctx, created.ID, update)
	require.NoError(t, err)

	assert.Equal(t, created.AuthorID, updated.AuthorID)
	assert.True(t, updated.PubDate.Equal(created.PubDate))
}

func TestPatchEventStatusTransition(t *testing.T) {
	svc, repo, queue := newTestEventService(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, draftEvent())
	require.NoError(t, err)

	published := domain.StatusPublished
	title := "Renamed"

	updated, err := svc.PatchEvent(ctx, created.ID, EventPatch{
		Title:  &title,
		Status: &published,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.IsPublished())
	// Untouched fields survive the patch.
	assert.True(t, updated.StartDate.Equal(created.StartDate))
	assert.Len(t, queue.tasks, 1)
}

func TestPatchEventUnknownLocation(t *testing.T) {
	svc, repo, _ := newTestEventService(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, draftEvent())
	require.NoError(t, err)

	badLocation := uint(42)
	_, err = svc.PatchEvent(ctx, created.ID, EventPatch{LocationID: &badLocation})

	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestAttachImage(t *testing.T) {
	svc, repo, _ := newTestEventService(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, draftEvent())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 400, 100)), nil))

	attached, err := svc.AttachImage(ctx, created.ID, "photo.jpg", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, created.ID, attached.EventID)
	assert.NotEmpty(t, attached.Image)
	assert.NotEmpty(t, attached.Thumbnail)
}

func TestAttachImageUnsupportedExtension(t *testing.T) {
	svc, repo, _ := newTestEventService(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, draftEvent())
	require.NoError(t, err)

	attached, err := svc.AttachImage(ctx, created.ID, "clip.gif", []byte("gif bytes"))
	require.NoError(t, err)

	// Stored, but without a thumbnail.
	assert.NotEmpty(t, attached.Image)
	assert.Empty(t, attached.Thumbnail)
}

func TestAttachImageUndecodable(t *testing.T) {
	svc, repo, _ := newTestEventService(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, draftEvent())
	require.NoError(t, err)

	_, err = svc.AttachImage(ctx, created.ID, "broken.jpg", []byte("not an image"))

	assert.ErrorIs(t, err, ErrBadImage)
}

func TestImportEventsInvalidWorkbook(t *testing.T) {
	svc, _, _ := newTestEventService(t)

	_, err := svc.ImportEvents(context.Background(), strings.NewReader("not a workbook"), domain.User{ID: 1})

	assert.ErrorIs(t, err, ErrInvalidWorkbook)
}

func TestImportEvents(t *testing.T) {
	svc, repo, _ := newTestEventService(t)

	workbook, err := spreadsheet.WriteEvents([]domain.Event{
		{
			Title:     "Imported",
			StartDate: time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 6, 1, 21, 0, 0, 0, time.UTC),
			Location:  domain.Location{Name: "Pier", Lat: 1, Lon: 2},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = workbook.WriteTo(&buf)
	require.NoError(t, err)

	created, err := svc.ImportEvents(context.Background(), &buf, domain.User{ID: 7})
	require.NoError(t, err)

	assert.Equal(t, 1, created)
	assert.Equal(t, uint(7), repo.importerID)
	require.Len(t, repo.imported, 1)
	assert.Equal(t, "Imported", repo.imported[0].Title)
}

func TestExportEventsIgnoresPagination(t *testing.T) {
	svc, repo, _ := newTestEventService(t)

	_, err := svc.ExportEvents(context.Background(), domain.EventFilter{Page: 3, PageSize: 5}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, repo.lastFilter.Page)
	assert.Equal(t, 0, repo.lastFilter.PageSize)
}
