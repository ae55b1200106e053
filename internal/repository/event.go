package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/repository/dao"
)

var ErrEventNotFound = dao.ErrEventNotFound

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	List(ctx context.Context, query dao.EventQuery) ([]dao.Event, int64, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	Delete(ctx context.Context, id uint) error
	FindDueDrafts(ctx context.Context, now time.Time) ([]dao.Event, error)
	PublishIfDraft(ctx context.Context, id uint) (bool, error)
	FindPublished(ctx context.Context) ([]dao.Event, error)
	InsertImage(ctx context.Context, image dao.EventImage) (dao.EventImage, error)
	UpsertWeather(ctx context.Context, weather dao.WeatherData) error
	ImportEvents(ctx context.Context, authorID uint, rows []dao.ImportedRow) (int, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, int64, error) {
	found, total, err := r.dao.List(ctx, dao.EventQuery{
		StartDateAfter:  filter.StartDateAfter,
		StartDateBefore: filter.StartDateBefore,
		EndDateAfter:    filter.EndDateAfter,
		EndDateBefore:   filter.EndDateBefore,
		RatingMin:       filter.RatingMin,
		RatingMax:       filter.RatingMax,
		LocationIDs:     filter.LocationIDs,
		Status:          string(filter.Status),
		Search:          filter.Search,
		Ordering:        filter.Ordering,
		Page:            filter.Page,
		PageSize:        filter.PageSize,
		IncludeDrafts:   filter.IncludeDrafts,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.List -> %w", err)
	}

	events := make([]domain.Event, 0, len(found))
	for _, e := range found {
		events = append(events, r.daoToDomain(e))
	}

	return events, total, nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, r.domainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) FindDueDrafts(ctx context.Context, now time.Time) ([]domain.Event, error) {
	found, err := r.dao.FindDueDrafts(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindDueDrafts -> %w", err)
	}

	events := make([]domain.Event, 0, len(found))
	for _, e := range found {
		events = append(events, r.daoToDomain(e))
	}

	return events, nil
}

func (r *EventRepository) PublishIfDraft(ctx context.Context, id uint) (bool, error) {
	published, err := r.dao.PublishIfDraft(ctx, id)
	if err != nil {
		return false, fmt.Errorf("r.dao.PublishIfDraft -> %w", err)
	}

	return published, nil
}

func (r *EventRepository) FindPublished(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPublished -> %w", err)
	}

	events := make([]domain.Event, 0, len(found))
	for _, e := range found {
		events = append(events, r.daoToDomain(e))
	}

	return events, nil
}

func (r *EventRepository) AddImage(ctx context.Context, image domain.EventImage) (domain.EventImage, error) {
	created, err := r.dao.InsertImage(ctx, dao.EventImage{
		EventID:   image.EventID,
		Image:     image.Image,
		Thumbnail: image.Thumbnail,
	})
	if err != nil {
		return domain.EventImage{}, fmt.Errorf("r.dao.InsertImage -> %w", err)
	}

	return r.imageDAOToDomain(created), nil
}

func (r *EventRepository) UpsertWeather(ctx context.Context, weather domain.WeatherData) error {
	err := r.dao.UpsertWeather(ctx, dao.WeatherData{
		EventID:       weather.EventID,
		Temperature:   weather.Temperature,
		Humidity:      weather.Humidity,
		Pressure:      weather.Pressure,
		WindDirection: weather.WindDirection,
		WindSpeed:     weather.WindSpeed,
		CreatedAt:     weather.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("r.dao.UpsertWeather -> %w", err)
	}

	return nil
}

func (r *EventRepository) ImportEvents(ctx context.Context, authorID uint, rows []domain.ImportedEvent) (int, error) {
	daoRows := make([]dao.ImportedRow, 0, len(rows))
	for _, row := range rows {
		daoRows = append(daoRows, dao.ImportedRow{
			Title:        row.Title,
			Description:  row.Description,
			StartDate:    row.StartDate,
			EndDate:      row.EndDate,
			LocationName: row.LocationName,
			Lat:          row.Lat,
			Lon:          row.Lon,
			Rating:       row.Rating,
		})
	}

	created, err := r.dao.ImportEvents(ctx, authorID, daoRows)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ImportEvents -> %w", err)
	}

	return created, nil
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	images := make([]domain.EventImage, 0, len(e.Images))
	for _, img := range e.Images {
		images = append(images, r.imageDAOToDomain(img))
	}

	var weather *domain.WeatherData
	if e.Weather != nil {
		weather = &domain.WeatherData{
			EventID:       e.Weather.EventID,
			Temperature:   e.Weather.Temperature,
			Humidity:      e.Weather.Humidity,
			Pressure:      e.Weather.Pressure,
			WindDirection: e.Weather.WindDirection,
			WindSpeed:     e.Weather.WindSpeed,
			CreatedAt:     e.Weather.CreatedAt,
		}
	}

	return domain.Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		PubDate:     e.PubDate,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		AuthorID:    e.AuthorID,
		LocationID:  e.LocationID,
		Location: domain.Location{
			ID:   e.Location.ID,
			Name: e.Location.Name,
			Lat:  e.Location.Lat,
			Lon:  e.Location.Lon,
		},
		Rating:    e.Rating,
		Status:    domain.EventStatus(e.Status),
		Images:    images,
		Weather:   weather,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (r *EventRepository) imageDAOToDomain(img dao.EventImage) domain.EventImage {
	return domain.EventImage{
		ID:        img.ID,
		EventID:   img.EventID,
		Image:     img.Image,
		Thumbnail: img.Thumbnail,
	}
}

func (r *EventRepository) domainToDAO(e domain.Event) dao.Event {
	return dao.Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		PubDate:     e.PubDate,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		AuthorID:    e.AuthorID,
		LocationID:  e.LocationID,
		Rating:      e.Rating,
		Status:      string(e.Status),
	}
}
