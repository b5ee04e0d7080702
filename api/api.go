package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/bot"
	"github.com/papercomputeco/dossier/pkg/metrics"
)

// StatsProvider reports the state of the chat gateway.
type StatsProvider interface {
	Stats() bot.Stats
}

// Server is the dashboard API server.
type Server struct {
	config  Config
	service *bot.Service
	stats   StatsProvider
	metrics *metrics.Metrics
	logger  *zap.Logger
	app     *fiber.App
}

// Option configures a Server.
type Option func(*Server)

// WithStats attaches the chat gateway whose stats /api/bot/stats reports.
func WithStats(stats StatsProvider) Option {
	return func(s *Server) {
		s.stats = stats
	}
}

// WithMetrics exposes m on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a new API server.
// The service is injected to allow sharing with the chat bot running in the
// same process.
func NewServer(config Config, service *bot.Service, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	s := &Server{
		config:  config,
		service: service,
		logger:  logger,
		app:     app,
	}
	for _, opt := range opts {
		opt(s)
	}

	app.Get("/ping", s.handlePing)

	people := app.Group("/api/people")
	people.Get("/", s.handleListPeople)
	people.Get("/:name", s.handleGetPerson)
	people.Delete("/:id", s.handleDeletePerson)

	reports := app.Group("/api/reports")
	reports.Get("/", s.handleListReports)
	reports.Post("/", s.handleCreateReport)
	reports.Delete("/:id", s.handleDeleteReport)

	app.Get("/api/bot/stats", s.handleBotStats)

	if s.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
