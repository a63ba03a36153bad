package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/haltestellenmonitor/internal/config"
	"github.com/haltestellenmonitor/internal/delivery/http/handler"
	"github.com/haltestellenmonitor/internal/delivery/http/middleware"
	"github.com/haltestellenmonitor/internal/pkg/errors"
	"github.com/haltestellenmonitor/internal/pkg/utils"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Handlers - все обработчики API
type Handlers struct {
	Stop     *handler.StopHandler
	Board    *handler.BoardHandler
	Trip     *handler.TripHandler
	Activity *handler.ActivityHandler
	Favorite *handler.FavoriteHandler
	Health   *handler.HealthHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
}

func NewServer(cfg *config.Config, logger *zap.Logger, handlers Handlers) *Server {
	// WriteTimeout больше таймаута EFA (20 с)
	app := fiber.New(fiber.Config{
		AppName:      "Haltestellenmonitor",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 25 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")
	h := s.handlers

	api.Get("/health", h.Health.Health)

	// Stops; /nearest до /:gid
	api.Get("/stops", h.Stop.Search)
	api.Get("/stops/nearest", h.Stop.Nearest)
	api.Get("/stops/:gid", h.Stop.Get)
	api.Get("/stops/:gid/departures", h.Board.Departures)

	// Board sessions
	api.Post("/boards", h.Board.StartBoard)
	api.Get("/boards/:id", h.Board.GetBoard)
	api.Put("/boards/:id", h.Board.UpdateBoard)
	api.Post("/boards/:id/refresh", h.Board.RefreshBoard)
	api.Delete("/boards/:id", h.Board.StopBoard)

	// Trip sessions
	api.Post("/trips", h.Trip.StartTrip)
	api.Get("/trips/:id", h.Trip.GetTrip)
	api.Delete("/trips/:id", h.Trip.StopTrip)

	// Live activities
	api.Post("/activities", h.Activity.Start)
	api.Get("/activities", h.Activity.List)
	api.Get("/activities/:id", h.Activity.Get)
	api.Delete("/activities/:id", h.Activity.Stop)

	// Favorites
	api.Get("/favorites", h.Favorite.List)
	api.Get("/favorites/default", h.Favorite.Default)
	api.Post("/favorites/:stop_id", h.Favorite.Add)
	api.Post("/favorites/:stop_id/toggle", h.Favorite.Toggle)
	api.Delete("/favorites/:stop_id", h.Favorite.Remove)
}

// App - для тестов через app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки, которые не обработал хендлер (404 роутера, паники)
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*fiber.Error); ok {
			appErr := errors.New("HTTP_ERROR", e.Message, e.Code)
			if e.Code == fiber.StatusNotFound {
				appErr = errors.New("NOT_FOUND", "Route not found", e.Code)
			}
			return c.Status(e.Code).JSON(utils.ErrorResponse{Error: appErr})
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}
