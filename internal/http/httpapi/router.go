package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"adstudio/internal/http/handlers"
	"adstudio/internal/metrics"
	mw "adstudio/internal/middleware"
)

type Options struct {
	Logger             zerolog.Logger
	Metrics            *metrics.Recorder
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	// StaticDir serves filesystem blobs under /static when set.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		mw.RequestID(opts.Logger),
		chimw.Recoverer,
		mw.AccessLog(opts.Metrics),
		mw.CORS(opts.CORSAllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(opts.RateLimitPerMinute, time.Minute))
			r.Post("/ad-copy", app.GenerateAdCopy)
			r.Post("/moodboards/images", app.GenerateMoodboardImages)
		})
		r.Get("/moodboards/{id}/images", app.ListMoodboardImages)
		r.Get("/library", app.ImageLibrary)
	})

	return r
}
