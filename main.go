package main

import (
	"log"

	"eventhub-backend/config"
	"eventhub-backend/internal/handler"
	"eventhub-backend/internal/middleware"
	"eventhub-backend/internal/repository"
	"eventhub-backend/internal/service"
	"eventhub-backend/pkg/database"
	"eventhub-backend/pkg/rabbitmq"
	"eventhub-backend/pkg/statsclient"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ is optional: without a URL the lifecycle notifications are
	// simply not published.
	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		var err error
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	}

	// Same for the stats collector: views degrade to zero without it.
	var stats *statsclient.Client
	if cfg.StatsURL != "" {
		stats = statsclient.New(cfg.StatsURL, cfg.AppName)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	eventRepo := repository.NewEventRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	var statsIface service.StatsClient
	var hitsIface handler.HitSender
	if stats != nil {
		statsIface = stats
		hitsIface = stats
	}
	eventSvc := service.NewEventService(eventRepo, requestRepo, userRepo, categoryRepo, statsIface, publisher)
	requestSvc := service.NewRequestService(requestRepo, eventRepo, userRepo)
	commentSvc := service.NewCommentService(commentRepo, eventRepo, userRepo)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewRequestValidator()
	e.Use(echoMw.RequestIDWithConfig(echoMw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "eventhub-backend"})
	})

	handler.NewEventHandler(eventSvc, hitsIface).RegisterRoutes(e)
	handler.NewRequestHandler(requestSvc).RegisterRoutes(e)
	handler.NewCommentHandler(commentSvc).RegisterRoutes(e)
	handler.NewAdminHandler(userRepo, categoryRepo).RegisterRoutes(e)

	log.Printf("EventHub backend starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
