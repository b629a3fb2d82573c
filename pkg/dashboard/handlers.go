package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-circletrack/internal/log"
	"github.com/teslashibe/go-circletrack/pkg/hub"
)

// handleStatus returns the current pipeline stats
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.status())
}

// handleConfig returns the effective configuration
func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(s.config)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// handleStatusWS sends the current stats, then streams updates from the hub
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if err := c.WriteJSON(s.status()); err != nil {
		log.Debug("dashboard: initial status write failed", "error", err)
		return
	}

	client := hub.NewClient(s.statusHub, c)
	if client == nil {
		return
	}
	client.Run()
}
