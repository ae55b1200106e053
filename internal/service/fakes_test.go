package service

import (
	"context"
	"time"

	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/task"
	"github.com/citypulse/events-api/internal/weather"
)

type fakeEventRepo struct {
	events     map[uint]domain.Event
	nextID     uint
	lastFilter domain.EventFilter
	weather    []domain.WeatherData
	imported   []domain.ImportedEvent
	importerID uint
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events: make(map[uint]domain.Event),
		nextID: 1,
	}
}

func (r *fakeEventRepo) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	event.ID = r.nextID
	r.nextID++
	r.events[event.ID] = event

	return event, nil
}

func (r *fakeEventRepo) FindByID(_ context.Context, id uint) (domain.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return domain.Event{}, ErrEventNotFound
	}

	return event, nil
}

func (r *fakeEventRepo) List(_ context.Context, filter domain.EventFilter) ([]domain.Event, int64, error) {
	r.lastFilter = filter

	var matched []domain.Event
	for _, event := range r.events {
		if !filter.IncludeDrafts && !event.IsPublished() {
			continue
		}
		matched = append(matched, event)
	}

	return matched, int64(len(matched)), nil
}

func (r *fakeEventRepo) Update(_ context.Context, event domain.Event) (domain.Event, error) {
	if _, ok := r.events[event.ID]; !ok {
		return domain.Event{}, ErrEventNotFound
	}
	r.events[event.ID] = event

	return event, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)

	return nil
}

func (r *fakeEventRepo) FindDueDrafts(_ context.Context, now time.Time) ([]domain.Event, error) {
	var due []domain.Event
	for _, event := range r.events {
		if event.Status == domain.StatusDraft && !event.PubDate.After(now) {
			due = append(due, event)
		}
	}

	return due, nil
}

func (r *fakeEventRepo) PublishIfDraft(_ context.Context, id uint) (bool, error) {
	event, ok := r.events[id]
	if !ok || event.Status != domain.StatusDraft {
		return false, nil
	}

	event.Status = domain.StatusPublished
	r.events[id] = event

	return true, nil
}

func (r *fakeEventRepo) FindPublished(_ context.Context) ([]domain.Event, error) {
	var published []domain.Event
	for _, event := range r.events {
		if event.IsPublished() {
			published = append(published, event)
		}
	}

	return published, nil
}

func (r *fakeEventRepo) AddImage(_ context.Context, image domain.EventImage) (domain.EventImage, error) {
	image.ID = r.nextID
	r.nextID++

	return image, nil
}

func (r *fakeEventRepo) UpsertWeather(_ context.Context, data domain.WeatherData) error {
	r.weather = append(r.weather, data)

	return nil
}

func (r *fakeEventRepo) ImportEvents(_ context.Context, authorID uint, rows []domain.ImportedEvent) (int, error) {
	r.importerID = authorID
	r.imported = rows

	return len(rows), nil
}

type fakeLocationRepo struct {
	locations map[uint]domain.Location
}

func newFakeLocationRepo(locations ...domain.Location) *fakeLocationRepo {
	r := &fakeLocationRepo{locations: make(map[uint]domain.Location)}
	for _, l := range locations {
		r.locations[l.ID] = l
	}

	return r
}

func (r *fakeLocationRepo) Create(_ context.Context, location domain.Location) (domain.Location, error) {
	r.locations[location.ID] = location

	return location, nil
}

func (r *fakeLocationRepo) FindByID(_ context.Context, id uint) (domain.Location, error) {
	location, ok := r.locations[id]
	if !ok {
		return domain.Location{}, ErrLocationNotFound
	}

	return location, nil
}

func (r *fakeLocationRepo) FindAll(_ context.Context) ([]domain.Location, error) {
	var all []domain.Location
	for _, l := range r.locations {
		all = append(all, l)
	}

	return all, nil
}

func (r *fakeLocationRepo) Update(_ context.Context, location domain.Location) (domain.Location, error) {
	if _, ok := r.locations[location.ID]; !ok {
		return domain.Location{}, ErrLocationNotFound
	}
	r.locations[location.ID] = location

	return location, nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.locations[id]; !ok {
		return ErrLocationNotFound
	}
	delete(r.locations, id)

	return nil
}

type fakeUserRepo struct {
	users  map[uint]domain.User
	nextID uint
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{
		users:  make(map[uint]domain.User),
		nextID: 100,
	}
	for _, u := range users {
		r.users[u.ID] = u
	}

	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domain.User{}, ErrUserEmailExists
		}
	}

	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user

	return user, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}

	return domain.User{}, ErrUserNotFound
}

type fakeTaskQueue struct {
	tasks []task.Task
	err   error
}

func (q *fakeTaskQueue) Enqueue(_ context.Context, t task.Task) error {
	if q.err != nil {
		return q.err
	}

	q.tasks = append(q.tasks, t)

	return nil
}

type fakeMediaStore struct {
	saved []string
}

func (s *fakeMediaStore) Save(subdir, originalName string, _ []byte) (string, error) {
	path := subdir + "/" + originalName
	s.saved = append(s.saved, path)

	return path, nil
}

type fakeWeatherClient struct {
	observation weather.Observation
	failFor     map[uint]bool
	err         error
	calls       int
}

func (c *fakeWeatherClient) Current(_ context.Context, lat, _ float64) (weather.Observation, error) {
	c.calls++
	if c.err != nil {
		return weather.Observation{}, c.err
	}
	if c.failFor != nil && c.failFor[uint(lat)] {
		return weather.Observation{}, weather.ErrNoHourlyData
	}

	return c.observation, nil
}
