package domain

import "time"

type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
)

// MaxRating is the inclusive upper bound of an event rating.
const MaxRating = 25

type Event struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	PubDate     time.Time    `json:"pub_date"`
	StartDate   time.Time    `json:"start_date"`
	EndDate     time.Time    `json:"end_date"`
	AuthorID    uint         `json:"author"`
	LocationID  uint         `json:"location"`
	Location    Location     `json:"location_details"`
	Rating      uint         `json:"rating"`
	Status      EventStatus  `json:"status"`
	Images      []EventImage `json:"images"`
	Weather     *WeatherData `json:"weather,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (e *Event) IsPublished() bool {
	return e.Status == StatusPublished
}

type EventImage struct {
	ID        uint   `json:"id"`
	EventID   uint   `json:"event"`
	Image     string `json:"image"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// WeatherData is the cached snapshot of the forecast API response for the
// event's location, refreshed by the weather sweep.
type WeatherData struct {
	EventID       uint      `json:"event"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	Pressure      float64   `json:"pressure"`
	WindDirection string    `json:"wind_direction"`
	WindSpeed     float64   `json:"wind_speed"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventFilter describes the list query. Nil range bounds are unset.
// IncludeDrafts is derived from the caller's role, never from user input.
type EventFilter struct {
	StartDateAfter  *time.Time
	StartDateBefore *time.Time
	EndDateAfter    *time.Time
	EndDateBefore   *time.Time
	RatingMin       *uint
	RatingMax       *uint
	LocationIDs     []uint
	Status          EventStatus
	Search          string
	Ordering        string
	Page            int
	PageSize        int
	IncludeDrafts   bool
}

// ImportedEvent is one parsed spreadsheet row.
type ImportedEvent struct {
	Title        string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	LocationName string
	Lat          float64
	Lon          float64
	Rating       uint
}
