// Package scheduler drives the background sweeps on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/citypulse/events-api/internal/config"
)

type SweepService interface {
	PublishDueEvents(ctx context.Context) (int, error)
	RefreshWeather(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron  *cron.Cron
	sweep SweepService
	conf  *config.SweepConfig
}

func New(sweep SweepService, conf *config.SweepConfig) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		sweep: sweep,
		conf:  conf,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.conf.PublishSchedule, s.runPublishSweep); err != nil {
		return fmt.Errorf("s.cron.AddFunc -> %w", err)
	}
	if _, err := s.cron.AddFunc(s.conf.WeatherSchedule, s.runWeatherSweep); err != nil {
		return fmt.Errorf("s.cron.AddFunc -> %w", err)
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runPublishSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	published, err := s.sweep.PublishDueEvents(ctx)
	if err != nil {
		zap.L().Error("publish sweep failed", zap.Error(err))

		return
	}

	zap.L().Info("publish sweep finished", zap.Int("published", published))
}

func (s *Scheduler) runWeatherSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	updated, err := s.sweep.RefreshWeather(ctx)
	if err != nil {
		zap.L().Error("weather sweep failed", zap.Error(err))

		return
	}

	zap.L().Info("weather sweep finished", zap.Int("updated", updated))
}
