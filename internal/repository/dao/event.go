package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEventNotFound = errors.New("event not found")

type Event struct {
	ID uint `gorm:"primaryKey"`

	Title       string `gorm:"not null"`
	Description string

	PubDate   time.Time `gorm:"not null"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`

	AuthorID uint `gorm:"not null;index"`
	Author   User `gorm:"constraint:OnDelete:CASCADE"`

	LocationID uint `gorm:"not null;index"`
	Location   Location

	Rating uint   `gorm:"not null;default:0"`
	Status string `gorm:"not null;default:draft;index"` // "draft" or "published"

	Images  []EventImage `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Weather *WeatherData `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EventImage struct {
	ID        uint   `gorm:"primaryKey"`
	EventID   uint   `gorm:"not null;index"`
	Image     string `gorm:"not null"`
	Thumbnail string
}

type WeatherData struct {
	ID            uint `gorm:"primaryKey"`
	EventID       uint `gorm:"not null;uniqueIndex"`
	Temperature   float64
	Humidity      float64
	Pressure      float64
	WindDirection string
	WindSpeed     float64
	CreatedAt     time.Time `gorm:"not null"`
}

// EventQuery mirrors the supported list parameters. Nil bounds are unset.
type EventQuery struct {
	StartDateAfter  *time.Time
	StartDateBefore *time.Time
	EndDateAfter    *time.Time
	EndDateBefore   *time.Time
	RatingMin       *uint
	RatingMax       *uint
	LocationIDs     []uint
	Status          string
	Search          string
	Ordering        string
	Page            int
	PageSize        int
	IncludeDrafts   bool
}

// ImportedRow is one spreadsheet row to be turned into a published event.
type ImportedRow struct {
	Title        string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	LocationName string
	Lat          float64
	Lon          float64
	Rating       uint
}

// orderings whitelists sortable columns; anything else falls back to title.
var orderings = map[string]string{
	"title":       "events.title",
	"-title":      "events.title DESC",
	"start_date":  "events.start_date",
	"-start_date": "events.start_date DESC",
	"end_date":    "events.end_date",
	"-end_date":   "events.end_date DESC",
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Omit("Author", "Location", "Images", "Weather").Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).
		Preload("Location").
		Preload("Images").
		Preload("Weather").
		First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) List(ctx context.Context, query EventQuery) ([]Event, int64, error) {
	tx := d.db.WithContext(ctx).Model(&Event{})

	if !query.IncludeDrafts {
		tx = tx.Where("events.status = ?", "published")
	}
	if query.Status != "" {
		tx = tx.Where("events.status = ?", query.Status)
	}
	if query.StartDateAfter != nil {
		tx = tx.Where("events.start_date >= ?", *query.StartDateAfter)
	}
	if query.StartDateBefore != nil {
		tx = tx.Where("events.start_date <= ?", *query.StartDateBefore)
	}
	if query.EndDateAfter != nil {
		tx = tx.Where("events.end_date >= ?", *query.EndDateAfter)
	}
	if query.EndDateBefore != nil {
		tx = tx.Where("events.end_date <= ?", *query.EndDateBefore)
	}
	if query.RatingMin != nil {
		tx = tx.Where("events.rating >= ?", *query.RatingMin)
	}
	if query.RatingMax != nil {
		tx = tx.Where("events.rating <= ?", *query.RatingMax)
	}
	if len(query.LocationIDs) > 0 {
		tx = tx.Where("events.location_id IN ?", query.LocationIDs)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		tx = tx.Joins("JOIN locations ON locations.id = events.location_id").
			Where("events.title ILIKE ? OR locations.name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := orderings[query.Ordering]
	if !ok {
		order = orderings["title"]
	}
	tx = tx.Order(order)

	if query.PageSize > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Offset((page - 1) * query.PageSize).Limit(query.PageSize)
	}

	var events []Event
	result := tx.
		Preload("Location").
		Preload("Images").
		Preload("Weather").
		Find(&events)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return events, total, nil
}

func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Model(&Event{ID: event.ID}).
		Select("Title", "Description", "StartDate", "EndDate", "LocationID", "Rating", "Status").
		Updates(event)
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Select("Images", "Weather").Delete(&Event{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// FindDueDrafts returns drafts whose publication date has already elapsed.
func (d *EventDAO) FindDueDrafts(ctx context.Context, now time.Time) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("status = ? AND pub_date <= ?", "draft", now).
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// PublishIfDraft flips a draft to published. Reports false when the event
// was already published, so concurrent publishers stay idempotent.
func (d *EventDAO) PublishIfDraft(ctx context.Context, id uint) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Event{}).
		Where("id = ? AND status = ?", id, "draft").
		Update("status", "published")
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (d *EventDAO) FindPublished(ctx context.Context) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Preload("Location").
		Where("status = ?", "published").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) InsertImage(ctx context.Context, image EventImage) (EventImage, error) {
	result := d.db.WithContext(ctx).Create(&image)
	if result.Error != nil {
		return EventImage{}, result.Error
	}

	return image, nil
}

// UpsertWeather keeps exactly one snapshot per event.
func (d *EventDAO) UpsertWeather(ctx context.Context, weather WeatherData) error {
	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"temperature", "humidity", "pressure", "wind_direction", "wind_speed", "created_at",
		}),
	}).Create(&weather)

	return result.Error
}

// ImportEvents creates published events from spreadsheet rows inside a single
// transaction, so a failing row rolls back everything created before it.
// Locations are matched by name; coordinates apply only to newly created ones.
func (d *EventDAO) ImportEvents(ctx context.Context, authorID uint, rows []ImportedRow) (int, error) {
	created := 0

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		for _, row := range rows {
			var location Location
			err := tx.Where("name = ?", row.LocationName).First(&location).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				location = Location{Name: row.LocationName, Lat: row.Lat, Lon: row.Lon}
				if err = tx.Create(&location).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			event := Event{
				Title:       row.Title,
				Description: row.Description,
				PubDate:     now,
				StartDate:   row.StartDate,
				EndDate:     row.EndDate,
				AuthorID:    authorID,
				LocationID:  location.ID,
				Rating:      row.Rating,
				Status:      "published",
			}
			if err = tx.Omit("Author", "Location", "Images", "Weather").Create(&event).Error; err != nil {
				return err
			}

			created++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}
