package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/citypulse/events-api/internal/api"
	"github.com/citypulse/events-api/internal/config"
	"github.com/citypulse/events-api/internal/db"
	"github.com/citypulse/events-api/internal/logger"
	"github.com/citypulse/events-api/internal/mailer"
	"github.com/citypulse/events-api/internal/repository"
	"github.com/citypulse/events-api/internal/repository/dao"
	"github.com/citypulse/events-api/internal/scheduler"
	"github.com/citypulse/events-api/internal/service"
	"github.com/citypulse/events-api/internal/task"
	"github.com/citypulse/events-api/internal/weather"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
	})

	userRepo := repository.NewUserRepository(dao.NewUserDAO(postgresDB))
	if conf.API.StaffEmail != "" && conf.API.StaffPassword != "" {
		authSvc := service.NewAuthService(userRepo)
		if err = authSvc.EnsureStaff(context.Background(), conf.API.StaffEmail, conf.API.StaffPassword, "Staff"); err != nil {
			return fmt.Errorf("failed to seed staff user -> %w", err)
		}
	}

	// Email tasks are processed off the request path.
	queue := task.NewQueue(rdb)
	worker := task.NewWorker(queue, mailer.New(conf.SMTP))
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx)

	eventRepo := repository.NewEventRepository(dao.NewEventDAO(postgresDB))
	weatherClient := weather.NewClient(conf.Weather.BaseURL, time.Duration(conf.Weather.TimeoutSeconds)*time.Second)
	sweepSvc := service.NewSweepService(eventRepo, weatherClient)

	sched := scheduler.New(sweepSvc, conf.Sweep)
	if err = sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler -> %w", err)
	}
	defer sched.Stop()

	s := api.NewServer(conf, postgresDB, rdb)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
