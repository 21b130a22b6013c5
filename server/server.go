// Package server exposes the chat pipeline over HTTP. Endpoints mirror the
// façade: extract a page, ask a question, inspect stats, clear a session.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salespage/chatkit"
	"github.com/salespage/chatkit/logging"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "1.0.0"

// Options configure the HTTP server.
type Options struct {
	// ReleaseMode silences gin's debug output (default true).
	ReleaseMode bool
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Server wires the façade into a gin router.
type Server struct {
	kit    *chatkit.ChatKit
	engine *gin.Engine
	opts   Options
}

// New builds a Server around an existing ChatKit.
func New(kit *chatkit.ChatKit, optFns ...func(o *Options)) *Server {
	opts := Options{
		ReleaseMode: true,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{kit: kit, opts: opts}
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLog())

	engine.GET("/", s.handleHealth)
	engine.GET("/stats", s.handleStats)
	engine.GET("/conversation/:id", s.handleConversation)
	engine.POST("/extract", s.handleExtract)
	engine.POST("/chat", s.handleChat)
	engine.POST("/sessions/:id/clear", s.handleClearSession)
	engine.POST("/cache/invalidate", s.handleInvalidate)

	s.engine = engine
	return s
}

// Handler returns the underlying http.Handler, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.opts.Logger.Info("http server listening", "addr", addr)
	return s.engine.Run(addr)
}

// requestLog emits one structured line per request.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.opts.Logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
