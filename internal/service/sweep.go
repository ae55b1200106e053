package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/citypulse/events-api/internal/domain"
	"github.com/citypulse/events-api/internal/weather"
)

type WeatherClient interface {
	Current(ctx context.Context, lat, lon float64) (weather.Observation, error)
}

// SweepService holds the periodic passes over the event table. Both sweeps
// tolerate per-event failures; one bad event never aborts the rest.
type SweepService struct {
	repo    EventRepository
	weather WeatherClient
}

func NewSweepService(repo EventRepository, weather WeatherClient) *SweepService {
	return &SweepService{
		repo:    repo,
		weather: weather,
	}
}

// PublishDueEvents flips every draft whose publication date has elapsed.
// Unlike a manual publish, no notification email is sent.
func (s *SweepService) PublishDueEvents(ctx context.Context) (int, error) {
	drafts, err := s.repo.FindDueDrafts(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("s.repo.FindDueDrafts -> %w", err)
	}

	published := 0
	for _, event := range drafts {
		ok, err := s.repo.PublishIfDraft(ctx, event.ID)
		if err != nil {
			zap.L().Error("auto-publish failed",
				zap.Uint("event_id", event.ID),
				zap.Error(err))

			continue
		}
		if ok {
			published++
			zap.L().Info("event published automatically",
				zap.Uint("event_id", event.ID),
				zap.String("title", event.Title))
		}
	}

	return published, nil
}

// RefreshWeather fetches a fresh snapshot for every published event and
// upserts its weather row.
func (s *SweepService) RefreshWeather(ctx context.Context) (int, error) {
	events, err := s.repo.FindPublished(ctx)
	if err != nil {
		return 0, fmt.Errorf("s.repo.FindPublished -> %w", err)
	}

	updated := 0
	for _, event := range events {
		observation, err := s.weather.Current(ctx, event.Location.Lat, event.Location.Lon)
		if err != nil {
			zap.L().Warn("weather fetch failed",
				zap.Uint("event_id", event.ID),
				zap.String("title", event.Title),
				zap.Error(err))

			continue
		}

		err = s.repo.UpsertWeather(ctx, domain.WeatherData{
			EventID:       event.ID,
			Temperature:   observation.Temperature,
			Humidity:      observation.Humidity,
			Pressure:      observation.Pressure,
			WindDirection: observation.WindDirection,
			WindSpeed:     observation.WindSpeed,
			CreatedAt:     time.Now(),
		})
		if err != nil {
			zap.L().Error("weather upsert failed",
				zap.Uint("event_id", event.ID),
				zap.Error(err))

			continue
		}

		updated++
	}

	return updated, nil
}
