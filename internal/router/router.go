package router

import (
	"net/http"
	"strings"
	"time"

	"foodgram/internal/handler"
	"foodgram/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the API handlers mounted under /api.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Catalog *handler.CatalogHandler
	Recipe  *handler.RecipeHandler
}

// Options configures the cross-cutting parts of the router.
type Options struct {
	CORSOrigins     []string
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// MediaRoot and MediaPath serve locally stored images. Both must be set
	// for the file server to be mounted.
	MediaRoot string
	MediaPath string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, authenticator middleware.Authenticator, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Applied in order: RequestID -> Recovery -> Logging -> Metrics -> CORS
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(chimw.StripSlashes)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	if opts.MediaRoot != "" && strings.HasPrefix(opts.MediaPath, "/") {
		prefix := strings.TrimRight(opts.MediaPath, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(opts.MediaRoot))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(authenticator, logger))

		r.Route("/auth/token", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(opts.LoginRateLimit, opts.LoginRateWindow)).
				Post("/login", h.Auth.Login)
			r.With(middleware.RequireAuth).Post("/logout", h.Auth.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.User.List)
			r.Post("/", h.User.Register)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", h.User.Me)
				r.Post("/set_password", h.User.SetPassword)
				r.Get("/subscriptions", h.User.Subscriptions)
				r.Get("/{id}/subscribe", h.User.Subscribe)
				r.Post("/{id}/subscribe", h.User.Subscribe)
				r.Delete("/{id}/subscribe", h.User.Unsubscribe)
			})

			r.Get("/{id}", h.User.Profile)
		})

		r.Get("/tags", h.Catalog.ListTags)
		r.Get("/tags/{id}", h.Catalog.GetTag)
		r.Get("/ingredients", h.Catalog.ListIngredients)
		r.Get("/ingredients/{id}", h.Catalog.GetIngredient)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.Recipe.List)
			r.Get("/{id}", h.Recipe.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", h.Recipe.Create)
				r.Patch("/{id}", h.Recipe.Update)
				r.Put("/{id}", h.Recipe.Update)
				r.Delete("/{id}", h.Recipe.Delete)

				r.Get("/{id}/favorite", h.Recipe.AddFavorite)
				r.Post("/{id}/favorite", h.Recipe.AddFavorite)
				r.Delete("/{id}/favorite", h.Recipe.RemoveFavorite)

				r.Get("/{id}/shopping_cart", h.Recipe.AddToCart)
				r.Post("/{id}/shopping_cart", h.Recipe.AddToCart)
				r.Delete("/{id}/shopping_cart", h.Recipe.RemoveFromCart)

				r.Get("/download_shopping_cart", h.Recipe.DownloadShoppingCart)
			})
		})
	})

	return r
}
