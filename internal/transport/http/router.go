package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phonefeed-api/internal/application/media"
	"github.com/phonefeed-api/internal/application/post"
	"github.com/phonefeed-api/internal/application/profile"
	"github.com/phonefeed-api/internal/application/verification"
	"github.com/phonefeed-api/internal/config"
	"github.com/phonefeed-api/internal/transport/http/handler"
	appmiddleware "github.com/phonefeed-api/internal/transport/http/middleware"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ServiceName labels server spans.
const ServiceName = "phonefeed-api"

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.AccessLog(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	identify := func(next http.Handler) http.Handler { return next }
	verificationDeps := verification.ServiceDeps{Store: deps.VerificationStore, Notifier: deps.Notifier}
	if deps.JWTProvider != nil {
		identify = appmiddleware.Identify(deps.JWTProvider)
		verificationDeps.Tokens = deps.JWTProvider
	}
	ownerMw := []func(http.Handler) http.Handler{identify}
	if cfg.RequireIdentityToken {
		ownerMw = append(ownerMw, appmiddleware.RequireIdentity)
	}

	phoneH := handler.NewPhoneHandler(verification.NewService(verificationDeps))
	profileH := handler.NewProfileHandler(profile.NewService(deps.ProfileStore))
	postH := handler.NewPostHandler(post.NewService(deps.PostStore))
	uploadH := handler.NewUploadHandler(media.NewService(deps.Presigner, cfg.S3UploadExpiry))
	healthH := handler.NewHealthHandler()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthH.Health)

		r.Post("/phone", phoneH.RequestOTP)
		r.Post("/verify-otp", phoneH.VerifyOTP)

		r.Post("/add-data", profileH.Add)
		r.Get("/user-data", profileH.List)

		r.Post("/add-post", postH.Add)
		r.Get("/posts", postH.List)
		r.Post("/upload-url", uploadH.UploadURL)

		// Ownership-gated mutations.
		r.Group(func(r chi.Router) {
			r.Use(ownerMw...)
			r.Put("/edit-post/{id}", postH.Edit)
			r.Delete("/delete-post/{id}", postH.Delete)
		})
	})

	return otelhttp.NewHandler(r, ServiceName)
}
