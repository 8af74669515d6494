package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"voicebot/internal/http/handlers"
	"voicebot/internal/infra"
	"voicebot/internal/middleware"
)

// Options carries the router-level wiring that does not belong to handlers.
type Options struct {
	Logger          infra.Logger
	RateLimitPerMin int
	MatchLanguage   middleware.LanguageMatcher
	CountryLookup   middleware.CountryLookup
}

// NewRouter mounts the admission API surface.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}
	if opts.MatchLanguage != nil {
		r.Use(middleware.Locale(opts.MatchLanguage, opts.CountryLookup))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/voices", app.VoicesList)
	r.Get("/v1/stats", app.Stats)

	r.Post("/v1/speak", app.Speak)
	r.Get("/v1/limits", app.Limits)
	r.Get("/v1/history", app.History)

	r.Post("/v1/purchases/confirm", app.PurchasesConfirm)

	r.Route("/v1/admin/users/{user_id}", func(r chi.Router) {
		r.Post("/freeze", app.AdminFreeze)
		r.Post("/limit", app.AdminSetFreeLimit)
	})

	return r
}
