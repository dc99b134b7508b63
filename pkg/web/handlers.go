package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/blinkworks/go-blink/pkg/hub"
)

// handleStatus returns the pull-based diagnostics snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"session_id":  s.sessionID,
		"diagnostics": s.session.Diagnostics(),
		"enabled":     s.session.Enabled(),
	})
}

// handleConfig returns the session configuration.
func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(s.session.Config())
}

// EnabledRequest is the request body for the enable toggle.
type EnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// handleEnabled toggles blink counting at runtime.
func (s *Server) handleEnabled(c *fiber.Ctx) error {
	var req EnabledRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid body",
		})
	}

	s.session.SetEnabled(req.Enabled)
	return c.JSON(fiber.Map{"enabled": s.session.Enabled()})
}

// handleReset zeroes the blink count without stopping the session.
func (s *Server) handleReset(c *fiber.Ctx) error {
	s.session.Reset()
	return c.JSON(fiber.Map{"diagnostics": s.session.Diagnostics()})
}

// handleEventsWS streams accepted blinks to a subscriber.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.events, c)
	client.Run() // Blocks until the connection closes
}
