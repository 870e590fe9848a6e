// Package webhook serves the HTTP side of the bot: Telegram webhook pushes,
// a health probe and Prometheus metrics.
package webhook

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/telegram"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SecretHeader carries the secret token registered with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const shutdownTimeout = 5 * time.Second

// Submitter queues an event for asynchronous handling.
type Submitter interface {
	Submit(ctx context.Context, ev chat.Event) error
}

// HealthFunc reports whether the process can serve traffic.
type HealthFunc func(ctx context.Context) error

type Server struct {
	address string
	path    string
	secret  string
	queue   Submitter
	health  HealthFunc
	logger  logging.Logger
}

// NewServer creates the HTTP server. A nil q leaves the webhook route
// unregistered, which is how the bot runs in long-polling mode.
func NewServer(address, path, secret string, q Submitter, health HealthFunc, l logging.Logger) *Server {
	if path == "" {
		path = "/webhook"
	}
	return &Server{
		address: address,
		path:    path,
		secret:  secret,
		queue:   q,
		health:  health,
		logger:  l.With("module", "webhook_server"),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	if s.queue != nil {
		r.POST(s.path, s.handleUpdate)
	}
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address, "webhook_path", s.path)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleUpdate(c *gin.Context) {
	if s.secret != "" {
		got := c.GetHeader(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
	}

	var u telegram.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		s.logger.Warn(c.Request.Context(), "malformed update", "error", err)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	ev, ok := u.Event()
	if !ok {
		c.Status(http.StatusOK)
		return
	}

	// a non-2xx answer makes Telegram redeliver the update later
	if err := s.queue.Submit(c.Request.Context(), ev); err != nil {
		s.logger.Warn(c.Request.Context(), "update not queued", "update_id", u.UpdateID, "error", err)
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health != nil {
		if err := s.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
