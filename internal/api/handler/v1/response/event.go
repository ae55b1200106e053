package response

import "github.com/citypulse/events-api/internal/domain"

// ListEventsResponse is the paginated list envelope.
type ListEventsResponse struct {
	Count   int64          `json:"count"`
	Results []domain.Event `json:"results"`
}

type ImportEventsResponse struct {
	Created int `json:"created"`
}
