// Package server exposes dbee's commands over HTTP with a chi router.
//
// Every handler decodes a JSON request, calls one collaborator and writes a
// JSON response. Errors are rendered as {"error": ..., "kind": ...} with a
// status code derived from the error's errs.ErrKind.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/dbee/internal/assistant"
	"github.com/koustreak/dbee/internal/database"
	"github.com/koustreak/dbee/internal/logger"
	"github.com/koustreak/dbee/internal/settings"
)

// Session is the session/query engine. *session.Manager satisfies it.
type Session interface {
	Connect(ctx context.Context, d database.Descriptor) (*database.Summary, error)
	Disconnect() error
	Status() *database.Summary
	Test(ctx context.Context, d database.Descriptor) (bool, error)
	ExecuteQuery(ctx context.Context, sql string) (*database.QueryResult, error)
	Schema(ctx context.Context) (*database.DatabaseSchema, error)
}

// Profiles is the saved connection store. *settings.Profiles satisfies it.
type Profiles interface {
	List(ctx context.Context) ([]database.Descriptor, error)
	Save(ctx context.Context, d database.Descriptor) (*database.Descriptor, error)
	Delete(ctx context.Context, id string) error
}

// EditorTabs is the editor state store. *settings.EditorTabs satisfies it.
type EditorTabs interface {
	Load(ctx context.Context, connectionID string) (*settings.EditorState, error)
	Save(ctx context.Context, connectionID string, state settings.EditorState) error
}

// AISettings is the assistant settings store. *settings.AIStore satisfies it.
type AISettings interface {
	Read(ctx context.Context) (*settings.AISettings, error)
	Save(ctx context.Context, s settings.AISettings) error
}

// Assistant relays chat messages. *assistant.Relay satisfies it.
type Assistant interface {
	Send(ctx context.Context, messages []assistant.Message) (string, error)
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Session    Session
	Profiles   Profiles
	EditorTabs EditorTabs
	AISettings AISettings
	Assistant  Assistant
}

// Config holds the HTTP listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	cfg  Config
	deps Deps
	log  *logger.Logger
	http *http.Server
}

// New builds a Server. Nothing listens until ListenAndServe.
func New(cfg Config, deps Deps, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{cfg: cfg, deps: deps, log: log}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Router returns the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.status)
			r.Post("/connect", s.connect)
			r.Post("/disconnect", s.disconnect)
			r.Post("/test", s.test)
		})
		r.Post("/query", s.query)
		r.Get("/schema", s.schema)

		r.Route("/connections", func(r chi.Router) {
			r.Get("/", s.listConnections)
			r.Post("/", s.saveConnection)
			r.Delete("/{id}", s.deleteConnection)
		})

		r.Get("/editor-tabs/{connectionID}", s.loadEditorTabs)
		r.Put("/editor-tabs/{connectionID}", s.saveEditorTabs)

		r.Route("/ai", func(r chi.Router) {
			r.Get("/settings", s.aiSettings)
			r.Put("/settings", s.saveAISettings)
			r.Post("/messages", s.sendMessage)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.log.Error("graceful shutdown did not finish in time")
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
