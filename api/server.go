/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (httplog, ECS schema)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*                  Employee directory
  /api/periods/{year}/{month}/*     Punch feeds, edits and reports for one month
  /api/shifts                       Shift policies
  /api/scenarios/*                  Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	// AllowedOrigins for CORS. Empty means "*".
	AllowedOrigins []string

	// RequestLogLevel is the level request logs are written at.
	RequestLogLevel slog.Level
}

// NewLogger builds the JSON logger used by the server, with ECS field names
// so request logs and application logs share one schema.
func NewLogger(w io.Writer, level slog.Level, attrs ...slog.Attr) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})
	return slog.New(handler.WithAttrs(attrs))
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(h.Logger, &httplog.Options{
		Level:  opts.RequestLogLevel,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
		})

		// Period routes
		r.Route("/periods/{year}/{month}", func(r chi.Router) {
			r.Post("/punches", h.UploadPunches)
			r.Get("/imports", h.ListImports)
			r.Get("/employees", h.ListPeriodEmployees)
			r.Route("/employees/{id}", func(r chi.Router) {
				r.Get("/report", h.GetReport)
				r.Post("/punches", h.AddPunchPair)
				r.Delete("/punches", h.DeletePunch)
			})
		})

		r.Get("/shifts", h.ListShifts)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
