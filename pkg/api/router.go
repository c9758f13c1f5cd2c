package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/harrisonrobin/gravity/pkg/tasks"
)

// Options configures the HTTP surface.
type Options struct {
	// TokenSecret enables bearer JWT auth on every route except /health.
	TokenSecret    string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(coll *tasks.Collection, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	taskH := NewTaskHandler(coll)

	r.Get("/health", Health)

	r.Group(func(r chi.Router) {
		r.Use(BearerJWT([]byte(opts.TokenSecret)))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskH.List)
			r.Post("/", taskH.Create)
			r.Post("/{id}/complete", taskH.Complete)
		})
		r.Get("/plan", taskH.Plan)
	})

	return r
}
