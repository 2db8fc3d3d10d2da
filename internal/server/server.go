// Package server exposes a conversation store to browser clients over a
// small JSON API and a WebSocket that streams state snapshots.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/diogo/dstchat/internal/conversation"
	apierrors "github.com/diogo/dstchat/internal/errors"
)

const (
	// DefaultWaitTimeout bounds how long ?wait=true holds a request open
	DefaultWaitTimeout = 30 * time.Second

	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 4096
)

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request and connection logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWaitTimeout sets the limit for ?wait=true submissions
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.waitTimeout = d
		}
	}
}

// Server bridges HTTP clients to one conversation store
type Server struct {
	app         *fiber.App
	store       *conversation.Store
	logger      *zap.Logger
	waitTimeout time.Duration
}

// New builds the fiber app and registers every route
func New(store *conversation.Store, opts ...Option) *Server {
	s := &Server{
		store:       store,
		logger:      zap.NewNop(),
		waitTimeout: DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "dstchat",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)

	api := s.app.Group("/api")
	api.Get("/state", s.getState)
	api.Post("/messages", s.postMessage)
	api.Post("/clear", s.postClear)
	api.Put("/language", s.putLanguage)
	api.Post("/categories/:name/toggle", s.postToggleCategory)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.stream))

	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.logger.Info("server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for active requests
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Debug("request", fields...)
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// statusFor maps store and validation errors to HTTP status codes
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, apierrors.ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, apierrors.ErrEmptyMessage),
		errors.Is(err, apierrors.ErrInvalidRole),
		errors.Is(err, apierrors.ErrUnsupportedLanguage):
		return fiber.StatusBadRequest
	case errors.Is(err, apierrors.ErrClosed):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
