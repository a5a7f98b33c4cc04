package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions controls the construction of the authentication HTTP router.
// The zero value is valid; sensible defaults are applied where fields are
// not set.
type RouterOptions struct {
	Handlers    *AuthHandlers
	CORSOptions *cors.Options

	// Debug enables per-request logging.
	Debug bool
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
}

// CORSOptionsForOrigins returns the default policy with the allowed origins
// replaced by an operator-supplied list.
func CORSOptionsForOrigins(origins []string) cors.Options {
	opts := DefaultCORSOptions()
	opts.AllowedOrigins = origins
	return opts
}

// NewRouter assembles the HTTP surface: the session endpoint the engine's
// connection layer calls, plus health.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	if opts.Debug {
		r.Use(middleware.Logger)
	}

	corsOptions := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsOptions = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsOptions))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/v1/sessions", opts.Handlers.CreateSession)

	return r
}
