package request

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/citypulse/events-api/internal/domain"
)

var (
	errEndBeforeStart = errors.New("end_date must be after start_date")
	errInvalidStatus  = errors.New("status must be either draft or published")
)

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	LocationID  uint      `json:"location"`
	Rating      uint      `json:"rating"`
	Status      string    `json:"status"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.StartDate, validation.Required),
		validation.Field(&req.EndDate, validation.Required),
		validation.Field(&req.LocationID, validation.Required),
		validation.Field(&req.Rating, validation.Max(uint(domain.MaxRating))),
		validation.Field(&req.Status, validation.In(string(domain.StatusDraft), string(domain.StatusPublished))),
	)
	if err != nil {
		return err
	}

	if !req.EndDate.After(req.StartDate) {
		return errEndBeforeStart
	}

	return nil
}

type UpdateEventRequest struct {
	CreateEventRequest
}

type PatchEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	LocationID  *uint      `json:"location"`
	Rating      *uint      `json:"rating"`
	Status      *string    `json:"status"`
}

func (req *PatchEventRequest) Validate() error {
	if req.Title != nil {
		if err := validation.Validate(*req.Title, validation.Required, validation.Length(1, 255)); err != nil {
			return fmt.Errorf("title: %w", err)
		}
	}
	if req.Rating != nil && *req.Rating > domain.MaxRating {
		return fmt.Errorf("rating must be no greater than %v", domain.MaxRating)
	}
	if req.Status != nil &&
		*req.Status != string(domain.StatusDraft) && *req.Status != string(domain.StatusPublished) {
		return errInvalidStatus
	}
	if req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate) {
		return errEndBeforeStart
	}

	return nil
}

// The list endpoints accept timestamps in a few lenient layouts.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ParseEventFilter reads the supported list query parameters. Visibility
// (IncludeDrafts) is decided by the service, never here.
func ParseEventFilter(ctx *gin.Context) (domain.EventFilter, error) {
	filter := domain.EventFilter{
		Search:   ctx.Query("search"),
		Ordering: ctx.Query("ordering"),
	}

	var err error
	if filter.StartDateAfter, err = timeParam(ctx, "start_date_after"); err != nil {
		return domain.EventFilter{}, err
	}
	if filter.StartDateBefore, err = timeParam(ctx, "start_date_before"); err != nil {
		return domain.EventFilter{}, err
	}
	if filter.EndDateAfter, err = timeParam(ctx, "end_date_after"); err != nil {
		return domain.EventFilter{}, err
	}
	if filter.EndDateBefore, err = timeParam(ctx, "end_date_before"); err != nil {
		return domain.EventFilter{}, err
	}
	if filter.RatingMin, err = uintParam(ctx, "rating_min"); err != nil {
		return domain.EventFilter{}, err
	}
	if filter.RatingMax, err = uintParam(ctx, "rating_max"); err != nil {
		return domain.EventFilter{}, err
	}

	for _, raw := range ctx.QueryArray("location") {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return domain.EventFilter{}, fmt.Errorf("invalid location ID %q", raw)
		}
		filter.LocationIDs = append(filter.LocationIDs, uint(id))
	}

	switch status := ctx.Query("status"); status {
	case "", string(domain.StatusDraft), string(domain.StatusPublished):
		filter.Status = domain.EventStatus(status)
	default:
		return domain.EventFilter{}, errInvalidStatus
	}

	filter.Page = 1
	if raw := ctx.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return domain.EventFilter{}, fmt.Errorf("invalid page %q", raw)
		}
		filter.Page = page
	}

	filter.PageSize = defaultPageSize
	if raw := ctx.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return domain.EventFilter{}, fmt.Errorf("invalid page_size %q", raw)
		}
		if size > maxPageSize {
			size = maxPageSize
		}
		filter.PageSize = size
	}

	return filter, nil
}

func timeParam(ctx *gin.Context, name string) (*time.Time, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("invalid %v %q", name, raw)
}

func uintParam(ctx *gin.Context, name string) (*uint, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}

	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %v %q", name, raw)
	}

	value := uint(parsed)

	return &value, nil
}
