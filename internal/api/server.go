package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/citypulse/events-api/docs"
	v1 "github.com/citypulse/events-api/internal/api/handler/v1"
	"github.com/citypulse/events-api/internal/api/middleware"
	"github.com/citypulse/events-api/internal/config"
	"github.com/citypulse/events-api/internal/repository"
	"github.com/citypulse/events-api/internal/repository/dao"
	"github.com/citypulse/events-api/internal/service"
	"github.com/citypulse/events-api/internal/storage"
	"github.com/citypulse/events-api/internal/task"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB, rdb *redis.Client) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	locationHandler := s.initLocationHandler(db)
	eventHandler := s.initEventHandler(db, rdb)
	s.MountHandlers(authHandler, locationHandler, eventHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initLocationHandler(db *gorm.DB) *v1.LocationHandler {
	locationDAO := dao.NewLocationDAO(db)
	repo := repository.NewLocationRepository(locationDAO)
	svc := service.NewLocationService(repo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewLocationHandler(svc, uSvc)

	return handler
}

func (s *Server) initEventHandler(db *gorm.DB, rdb *redis.Client) *v1.EventHandler {
	eventDAO := dao.NewEventDAO(db)
	repo := repository.NewEventRepository(eventDAO)
	locationRepo := repository.NewLocationRepository(dao.NewLocationDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	queue := task.NewQueue(rdb)
	media := storage.NewMediaStore(s.Config.Media.Dir)
	svc := service.NewEventService(repo, locationRepo, userRepo, queue, media)
	uSvc := service.NewUserService(userRepo)
	handler := v1.NewEventHandler(svc, uSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, locationHandler *v1.LocationHandler, eventHandler *v1.EventHandler) {
	const basePath = "/api/v1"

	// Reads are public, so the whole group runs with optional auth; the
	// staff checks happen in the handlers.
	optionalAuth := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).OptionalJWT()

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	locations := s.Router.Group(basePath, optionalAuth)
	{
		locations.GET("/locations", locationHandler.HandleListLocations)
		locations.POST("/locations", locationHandler.HandleCreateLocation)
		locations.GET("/locations/:locationID", locationHandler.HandleGetLocation)
		locations.PUT("/locations/:locationID", locationHandler.HandleUpdateLocation)
		locations.DELETE("/locations/:locationID", locationHandler.HandleDeleteLocation)
	}

	events := s.Router.Group(basePath, optionalAuth)
	{
		events.GET("/events", eventHandler.HandleListEvents)
		events.POST("/events", eventHandler.HandleCreateEvent)
		events.GET("/events/export-xlsx", eventHandler.HandleExportEvents)
		events.POST("/events/import-xlsx", eventHandler.HandleImportEvents)
		events.GET("/events/:eventID", eventHandler.HandleGetEvent)
		events.PUT("/events/:eventID", eventHandler.HandleUpdateEvent)
		events.PATCH("/events/:eventID", eventHandler.HandlePatchEvent)
		events.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)
		events.POST("/events/:eventID/images", eventHandler.HandleUploadImage)
	}

	// Uploaded images and thumbnails.
	s.Router.Static("/media", s.Config.Media.Dir)

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "City Events API"
	docs.SwaggerInfo.Description = "CRUD API for public events with publication workflow, weather enrichment and XLSX import/export."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
