// Package api exposes the scanning engine over HTTP: rule and gate-set
// management, scan endpoints, scan history, a Prometheus endpoint and a
// WebSocket event stream.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"market-scanner/internal/events"
	"market-scanner/internal/gateset"
	"market-scanner/internal/history"
	"market-scanner/internal/logging"
	"market-scanner/internal/rules"
	"market-scanner/internal/scan"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	ProductionMode bool
}

// Server represents the HTTP API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     ServerConfig

	registry *rules.Registry
	sets     *gateset.Store
	eval     *scan.Evaluator
	orch     *scan.Orchestrator
	repo     *history.Repository // nil when history is disabled
	hub      *WSHub
	log      zerolog.Logger
}

// NewServer creates a new API server. repo may be nil when scan history
// is disabled; bus may be nil to disable the WebSocket stream.
func NewServer(
	config ServerConfig,
	registry *rules.Registry,
	sets *gateset.Store,
	eval *scan.Evaluator,
	orch *scan.Orchestrator,
	repo *history.Repository,
	bus *events.EventBus,
) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:   router,
		config:   config,
		registry: registry,
		sets:     sets,
		eval:     eval,
		orch:     orch,
		repo:     repo,
		log:      logging.Component("api"),
	}

	if bus != nil {
		server.hub = NewWSHub()
		go server.hub.Run()
		bus.SubscribeAll(server.hub.BroadcastEvent)
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api")
	{
		api.GET("/rules", s.handleListRules)

		api.GET("/gate-sets", s.handleListGateSets)
		api.POST("/gate-sets", s.handleCreateGateSet)
		api.DELETE("/gate-sets/:id", s.handleDeleteGateSet)

		api.POST("/scan", s.handleScanSymbol)
		api.POST("/scan-watchlist", s.handleScanWatchlist)
		api.GET("/scan/:gateSetId", s.handleScanDefaultWatchlist)
		api.GET("/scan-history", s.handleScanHistory)
	}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("HTTP server shutting down")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"history": s.repo != nil,
		"time":    time.Now().Format(time.RFC3339),
	})
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}
