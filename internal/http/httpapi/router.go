package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"donationagent/internal/http/handlers"
	"donationagent/internal/middleware"
)

// Options tunes the router middleware.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
}

// NewRouter assembles the API routes. The agent endpoint is rate limited per
// IP because every call can reach the paid completion capability.
func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.Get("/v1/healthz", app.Health)

	limit := opts.RateLimitPerMin
	if limit <= 0 {
		limit = 30
	}
	r.Route("/v1/agent", func(r chi.Router) {
		r.Use(middleware.RateLimit(limit, time.Minute))
		r.Post("/", app.AgentResolve)
	})

	r.Post("/v1/donate", app.DonationsPrepare)

	r.Route("/v1/donations", func(r chi.Router) {
		r.Post("/", app.DonationsRecord)
		r.Post("/submit", app.DonationsSubmit)
		r.Get("/", app.DonationsHistory)
		r.Get("/stats", app.DonationsStats)
	})

	return r
}
