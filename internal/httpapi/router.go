// Package httpapi wires the clipforge HTTP surface: routing, CORS, request
// logging and panic recovery around the endpoint handlers.
package httpapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"clipforge/internal/httpapi/handlers"
	"clipforge/internal/httpkit"
	"clipforge/internal/jobs"
	"clipforge/internal/pkg/logger"
	"clipforge/internal/pkg/middleware"
	"clipforge/internal/ports"
	"clipforge/internal/queue"
	"clipforge/internal/templates"
)

type Deps struct {
	Store    jobs.Store
	Queue    queue.Queue
	Registry *templates.Registry
	SP       ports.StorageProvider
	Log      *logger.Logger

	Pool *pgxpool.Pool
	RDB  *redis.Client
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))

	allowedOrigins := envCSV("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:3000",
		"http://localhost:5173",
	})
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", handlers.UserIDHeader},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	h := handlers.New(handlers.Deps{
		Store:    d.Store,
		Queue:    d.Queue,
		Registry: d.Registry,
		SP:       d.SP,
		Log:      log,
		Pool:     d.Pool,
		RDB:      d.RDB,
	})

	r.Get("/health", h.Health)

	r.Post("/renders", h.PostRender)
	r.Get("/renders", h.ListRenders)
	r.Get("/renders/{jobId}", h.GetRender)

	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/{templateId}", h.GetTemplate)

	r.Get("/artifacts/*", h.StreamArtifact)

	return r
}

func envCSV(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
