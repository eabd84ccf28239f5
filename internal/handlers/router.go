package handlers

import (
	"net/http"
	"os"

	"eventboard-backend/internal/metrics"
	"eventboard-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterConfig carries everything NewRouter wires together
type RouterConfig struct {
	Users     *UserHandler
	Events    *EventHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler
	// Auth guards writes and the change feed; nil disables it.
	Auth   *middleware.Authenticator
	Logger zerolog.Logger
	// StaticDir is served at / when set.
	StaticDir string
}

// NewRouter builds the HTTP routes
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.CorrelationID(cfg.Logger))
	r.Use(middleware.RequestLogging)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.CORS)

	// Users
	r.Get("/", cfg.Users.ListUsers)
	r.Get("/getUser/{id}", cfg.Users.GetUser)
	r.Get("/SingleUser/{id}", cfg.Users.GetUser)

	// Events
	r.Get("/Events", cfg.Events.ListEvents)
	r.Get("/PostsByCreator/{creatorId}", cfg.Events.ListByCreator)
	r.Get("/EventsByParticipant/{participantsId}", cfg.Events.ListByParticipant)
	r.Get("/getPost/{id}", cfg.Events.GetEvent)
	r.Get("/SingleEvent/{id}", cfg.Events.GetExpandedEvent)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth))

		r.Post("/CreateUser", cfg.Users.CreateUser)
		r.Put("/updateUser/{id}", cfg.Users.UpdateUser)
		r.Delete("/deleteUser/{id}", cfg.Users.DeleteUser)

		r.Post("/CreateEvents", cfg.Events.CreateEvent)
		r.Put("/editEvent/{id}", cfg.Events.UpdateEvent)
		r.Delete("/deletePost/{id}", cfg.Events.DeleteEvent)
	})

	if cfg.WebSocket != nil {
		r.Get("/ws", cfg.WebSocket.HandleWebSocket)
	}
	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Health)
	}
	r.Handle("/metrics", metrics.Handler())

	if cfg.StaticDir != "" {
		r.Get("/*", http.FileServer(filesOnly{http.Dir(cfg.StaticDir)}).ServeHTTP)
	}

	return r
}

// filesOnly hides directories so staged uploads cannot be listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
