// Package dashboard serves a read-only view of the running tracker:
// JSON status and configuration over HTTP and a websocket stats feed.
// It exposes no control routes.
package dashboard

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-circletrack/internal/log"
	"github.com/teslashibe/go-circletrack/pkg/hub"
	"github.com/teslashibe/go-circletrack/pkg/pipeline"
)

// DefaultInterval is how often stats are pushed to websocket clients.
const DefaultInterval = 500 * time.Millisecond

// StatusFunc returns the current pipeline stats.
type StatusFunc func() pipeline.Stats

// Server is the dashboard server
type Server struct {
	app      *fiber.App
	addr     string
	status   StatusFunc
	config   any
	interval time.Duration

	statusHub *hub.Hub
}

// NewServer creates a dashboard on addr (host:port). config is served as is
// from /api/config.
func NewServer(addr string, status StatusFunc, config any) *Server {
	s := &Server{
		addr:      addr,
		status:    status,
		config:    config,
		interval:  DefaultInterval,
		statusHub: hub.New("status"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "circletrack dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleConfig)
	api.Get("/health", s.handleHealth)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start serves on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("dashboard listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub, the stats feed and the HTTP server on ln until ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log.Info("dashboard listening", "url", "http://"+ln.Addr().String())

	go s.statusHub.Run(ctx)
	go s.feed(ctx)
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			log.Warn("dashboard shutdown", "error", err)
		}
	}()

	if err := s.app.Listener(ln); err != nil {
		return fmt.Errorf("dashboard serve: %w", err)
	}
	return nil
}

// StartAsync starts the server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			log.Warn("dashboard server error", "error", err)
		}
	}()
}

// feed pushes stats to connected clients on every tick.
func (s *Server) feed(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.statusHub.ClientCount() == 0 {
				continue
			}
			if err := s.statusHub.BroadcastJSON(s.status()); err != nil {
				log.Warn("dashboard: broadcast stats", "error", err)
			}
		}
	}
}

// App returns the underlying fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
