// Package server exposes the tips flow and the dashboard data over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/waqaskhan137/fintips/apperr"
	"github.com/waqaskhan137/fintips/core"
	"github.com/waqaskhan137/fintips/dashboard"
	"github.com/waqaskhan137/fintips/flow"
)

// maxBodyBytes bounds a tips request body.
const maxBodyBytes = 1 << 20

// TipsGenerator produces budgeting tips. *flow.BudgetTips implements it.
type TipsGenerator interface {
	Generate(ctx context.Context, in flow.Input) (*flow.Output, error)
}

// Config configures the server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Mode is the gin mode: debug, release or test.
	Mode string

	// CacheTTL is how long tips for an identical request are reused.
	// Zero disables the cache.
	CacheTTL time.Duration

	// CacheMaxEntries bounds the number of cached responses.
	CacheMaxEntries int64

	// Dashboard returns the dashboard data. Defaults to dashboard.Sample.
	Dashboard func() dashboard.Data
}

// Server serves the fintips API.
type Server struct {
	config     Config
	tips       TipsGenerator
	cache      *tipsCache
	router     *gin.Engine
	httpServer *http.Server
	upgrader   websocket.Upgrader
	listener   net.Listener
}

// New creates a server with the given configuration.
func New(cfg Config, tips TipsGenerator) (*Server, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Dashboard == nil {
		cfg.Dashboard = dashboard.Sample
	}

	cache, err := newTipsCache(cfg.CacheMaxEntries, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		tips:   tips,
		cache:  cache,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger(), Cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ws", s.handleWebSocket)

	api := router.Group("/api/v1")
	{
		api.POST("/tips", s.handleTips)
		api.GET("/dashboard", s.handleDashboard)
	}
	return router
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	slog.Info("starting fintips server", "addr", ln.Addr().String())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("stopping fintips server")
	err := s.httpServer.Shutdown(ctx)
	s.cache.close()
	return err
}

func (s *Server) handleTips(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		Error(c, apperr.ErrBadRequest.WithError(err))
		return
	}
	in, err := flow.DecodeInput(body)
	if err != nil {
		Error(c, err)
		return
	}

	out, err := s.generate(c.Request.Context(), in)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, out)
}

func (s *Server) handleDashboard(c *gin.Context) {
	Success(c, s.config.Dashboard())
}

// generate serves from the cache when possible. Failures are not cached.
func (s *Server) generate(ctx context.Context, in flow.Input) (*flow.Output, error) {
	key, err := cacheKey(core.UserID(ctx), in)
	if err == nil {
		if out, ok := s.cache.get(key); ok {
			return out, nil
		}
	}

	out, err := s.tips.Generate(ctx, in)
	if err != nil {
		return nil, err
	}
	if out.Tips == nil {
		out.Tips = []string{}
	}
	if key != "" {
		s.cache.set(key, out)
	}
	return out, nil
}
