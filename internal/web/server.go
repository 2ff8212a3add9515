// Package web serves the browser UI locally: the single-page chat
// front end plus the JSON and WebSocket endpoints it talks to.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/docchat-app/docchat/internal/api"
	"github.com/docchat-app/docchat/internal/auth"
	"github.com/docchat-app/docchat/internal/config"
	"github.com/docchat-app/docchat/internal/docapi"
	"github.com/docchat-app/docchat/internal/store"
)

// Config holds server options.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server hosts the local chat UI.
type Server struct {
	cfg        Config
	appCfg     *config.Config
	gateway    *auth.Gateway
	backend    *api.Client
	docs       *docapi.Client
	uploader   *docapi.Uploader
	store      *store.Store
	md         goldmark.Markdown
	router     chi.Router
	httpServer *http.Server
}

// New creates a server wired to the given clients.
func New(cfg Config, appCfg *config.Config, gateway *auth.Gateway, backend *api.Client, docs *docapi.Client, st *store.Store) *Server {
	s := &Server{
		cfg:      cfg,
		appCfg:   appCfg,
		gateway:  gateway,
		backend:  backend,
		docs:     docs,
		uploader: docapi.NewUploader(docs),
		store:    st,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}

	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", s.serveIndex)
	r.Get("/api/session", s.handleSession)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/logout", s.handleLogout)
	r.Get("/api/personas", s.handlePersonas)
	r.Post("/api/personas/select", s.handlePersonaSelect)
	r.Post("/api/upload", s.handleUpload)
	r.Get("/api/history", s.handleHistory)
	r.Get("/ws/chat", s.handleWebSocket)

	return r
}

// Router exposes the handler for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("docchat UI listening on http://localhost:%d", s.cfg.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
