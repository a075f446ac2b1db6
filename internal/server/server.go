package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/calriss/corsair/internal/common"
	"github.com/calriss/corsair/internal/interfaces"
)

// Server is the HTTP adapter exposing the ledger and market services.
type Server struct {
	config     *common.Config
	logger     *common.Logger
	ledger     interfaces.LedgerService
	market     interfaces.MarketService
	profiles   interfaces.ProfileClient
	httpServer *http.Server
}

// NewServer creates a Server wired to the given services.
func NewServer(cfg *common.Config, logger *common.Logger, ledger interfaces.LedgerService, market interfaces.MarketService, profiles interfaces.ProfileClient) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		ledger:   ledger,
		market:   market,
		profiles: profiles,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := Chain(mux,
		Recovery(logger),
		CORS(),
		CorrelationID(),
		RequestLogging(logger),
	)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health and version
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Report flow
	mux.HandleFunc("/api/flow/start", s.handleFlowStart)
	mux.HandleFunc("/api/flow/cargo", s.handleFlowCargo)
	mux.HandleFunc("/api/flow/crew", s.handleFlowCrew)
	mux.HandleFunc("/api/flow/seller", s.handleFlowSeller)
	mux.HandleFunc("/api/flow/commit", s.handleFlowCommit)
	mux.HandleFunc("/api/flow/abandon", s.handleFlowAbandon)

	// Reports and ledger
	mux.HandleFunc("/api/hits", s.handleListHits)
	mux.HandleFunc("/api/hits/", s.handleHitByID)
	mux.HandleFunc("/api/balance/", s.handleBalance)
	mux.HandleFunc("/api/payments", s.handlePayments)

	// Market data
	mux.HandleFunc("/api/market/commodities", s.handleCommodities)
	mux.HandleFunc("/api/market/search", s.handleMarketSearch)
	mux.HandleFunc("/api/market/price/", s.handlePriceCheck)

	// Profiles
	mux.HandleFunc("/api/profile/", s.handleProfile)
}

// Start begins listening for HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
	})
}
