// Package api provides the HTTP REST API server for DDMCalc.
//
// It exposes endpoints for single and batch valuations, form defaults,
// configuration management, and WebSocket streaming of recomputed results,
// and serves the embedded browser calculator at /.
package api

import (
	"context"
	"encoding/json"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/finmodel/ddmcalc/internal/config"
	"github.com/finmodel/ddmcalc/internal/ddm"
	"github.com/finmodel/ddmcalc/internal/store"
	"github.com/finmodel/ddmcalc/internal/validate"
	"github.com/finmodel/ddmcalc/web"
)

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	cfg        *config.Config
	state      *store.Store
	wsHub      *WSHub
	configFile string // where PUT /api/v1/config persists changes
	serveUI    bool   // when true, serve the embedded web UI at /
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) *Server {
	srv := &Server{
		cfg:        cfg,
		state:      store.New(),
		wsHub:      NewWSHub(),
		configFile: config.ConfigFilePath(),
		serveUI:    true, // serve embedded web UI by default
	}

	// Every recomputation flows from the state store to connected
	// browsers.
	srv.state.Subscribe(func(snap store.Snapshot) {
		srv.wsHub.Broadcast(WSMessage{Type: "valuation", Data: snap})
	})

	srv.router = srv.buildRouter()
	return srv
}

// SetServeUI controls whether the embedded web UI is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// State returns the server's observable valuation state.
func (s *Server) State() *store.Store {
	return s.state
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Valuation
		r.Post("/valuation", s.handleValuation)
		r.Post("/valuation/batch", s.handleBatchValuation)

		// Form defaults
		r.Get("/defaults", s.handleDefaults)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	// Serve embedded web UI (SPA with fallback to index.html)
	if s.serveUI {
		s.mountSPA(r, web.DistFS())
	}

	return r
}

// mountSPA serves the embedded static calculator as a single-page app.
// Unknown paths fall back to index.html.
func (s *Server) mountSPA(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServer(http.FS(distFS))

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := distFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, r, distFS)
			return
		}
		f.Close()

		if rPath == "index.html" || strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}

		fileServer.ServeHTTP(w, r)
	})
}

// serveIndexHTML reads and serves the embedded index.html for SPA fallback.
func serveIndexHTML(w http.ResponseWriter, r *http.Request, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		http.Error(w, "web UI not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ValidationErrorData carries field-keyed validation errors, shaped so the
// UI can attach each message to its input.
type ValidationErrorData struct {
	Errors []validate.FieldError `json:"errors"`
}

// Scenario is one named input set in a batch valuation request.
type Scenario struct {
	Name string `json:"name"`
	validate.Request
}

// BatchRequest is the body for POST /api/v1/valuation/batch.
type BatchRequest struct {
	Scenarios []Scenario `json:"scenarios"`
}

// ScenarioResult pairs a scenario with its outcome. Exactly one of Result
// and Errors is populated; results keep the request's scenario order.
type ScenarioResult struct {
	Name   string                `json:"name"`
	Result *store.Snapshot       `json:"result,omitempty"`
	Errors []validate.FieldError `json:"errors,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"ws_clients": s.wsHub.ClientCount(),
		},
	})
}

// handleValuation validates the request, runs all three models, records
// the snapshot in the state store (notifying WebSocket subscribers), and
// returns the keyed result set.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	var req validate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := validate.Check(req); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, APIResponse{
			Success: false,
			Error:   "validation failed",
			Data:    ValidationErrorData{Errors: errs},
		})
		return
	}

	snap := store.Snapshot{
		Request: req,
		Result:  ddm.ComputeAll(req.Input()),
	}
	s.state.Set(snap)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    snap,
	})
}

// handleBatchValuation computes several named scenarios concurrently. The
// engine is pure, so scenarios fan out with no coordination; the response
// preserves request order. Scenarios that fail validation report their
// field errors without failing the batch, and batch results bypass the
// state store — only the interactive single valuation drives the UI.
func (s *Server) handleBatchValuation(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Scenarios) == 0 {
		writeError(w, http.StatusBadRequest, "at least one scenario is required")
		return
	}
	if len(req.Scenarios) > 100 {
		writeError(w, http.StatusBadRequest, "too many scenarios (max 100)")
		return
	}

	results := make([]ScenarioResult, len(req.Scenarios))

	g, gctx := errgroup.WithContext(r.Context())
	for i, sc := range req.Scenarios {
		i, sc := i, sc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := ScenarioResult{Name: sc.Name}
			if errs := validate.Check(sc.Request); len(errs) > 0 {
				res.Errors = errs
			} else {
				res.Result = &store.Snapshot{
					Request: sc.Request,
					Result:  ddm.ComputeAll(sc.Request.Input()),
				}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    results,
	})
}

// handleDefaults returns the configured inputs the form is pre-filled with.
func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"defaults": s.cfg.Defaults.Request(),
			"display":  s.cfg.Display,
		},
	})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
