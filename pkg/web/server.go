// Package web provides the diagnostics dashboard and blink event
// stream for a running blink session.
package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/blinkworks/go-blink/internal/log"
	"github.com/blinkworks/go-blink/pkg/blink"
	"github.com/blinkworks/go-blink/pkg/hub"
)

// BlinkEvent is the JSON payload broadcast once per accepted blink.
type BlinkEvent struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
	Time      string `json:"time"`
}

// SessionAPI is what the server needs from the blink session. The
// concrete *blink.Session satisfies it; tests plug a mock.
type SessionAPI interface {
	Diagnostics() blink.Diagnostics
	Config() blink.Config
	SetEnabled(bool)
	Enabled() bool
	Reset()
}

// Server exposes the session's diagnostics over HTTP and streams
// accepted blinks over a websocket.
type Server struct {
	app       *fiber.App
	addr      string
	sessionID string

	session SessionAPI
	events  *hub.Hub
}

// NewServer creates the dashboard server for a session.
func NewServer(addr string, session SessionAPI) *Server {
	s := &Server{
		addr:      addr,
		sessionID: uuid.NewString(),
		session:   session,
		events:    hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-blink",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleConfig)
	api.Post("/enabled", s.handleEnabled)
	api.Post("/reset", s.handleReset)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// SessionID returns the UUID stamped on every broadcast event.
func (s *Server) SessionID() string {
	return s.sessionID
}

// PublishBlink broadcasts an accepted blink to all subscribers. It is
// safe to call from the frame-processing path: the hub buffers and
// drops rather than blocks.
func (s *Server) PublishBlink(count int) {
	s.events.BroadcastJSON(BlinkEvent{
		SessionID: s.sessionID,
		Count:     count,
		Time:      time.Now().Format(time.RFC3339),
	})
}

// Start runs the hub and listens. Blocks.
func (s *Server) Start() error {
	go s.events.Run()
	log.Info("dashboard listening", "addr", s.addr, "session_id", s.sessionID)
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
