package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platemenu/platemenu/internal/health"
	"github.com/platemenu/platemenu/internal/http/handler"
	"github.com/platemenu/platemenu/internal/http/middleware"
	"github.com/platemenu/platemenu/internal/http/response"
	"github.com/platemenu/platemenu/internal/security"
)

type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	RestaurantHandler *handler.RestaurantHandler
	MenuHandler       *handler.MenuHandler
	PublicHandler     *handler.PublicHandler
	TokenManager      *security.TokenManager
	CORSOrigins       []string
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp/send", dep.AuthHandler.SendOTP)
			r.Post("/otp/verify", dep.AuthHandler.VerifyOTP)
		})

		r.Get("/public/menus/{publicID}", dep.PublicHandler.Menu)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(dep.TokenManager))
			r.Get("/me", dep.UserHandler.Me)
			r.Patch("/me", dep.UserHandler.UpdateMe)

			r.Route("/restaurants", func(r chi.Router) {
				r.Get("/", dep.RestaurantHandler.List)
				r.Post("/", dep.RestaurantHandler.Create)
				r.Route("/{restaurantID}", func(r chi.Router) {
					r.Get("/", dep.RestaurantHandler.GetByID)
					r.Delete("/", dep.RestaurantHandler.Delete)

					r.Route("/categories", func(r chi.Router) {
						r.Get("/", dep.MenuHandler.ListCategories)
						r.Post("/", dep.MenuHandler.CreateCategory)
						r.Patch("/{categoryID}", dep.MenuHandler.UpdateCategory)
						r.Delete("/{categoryID}", dep.MenuHandler.DeleteCategory)
					})

					r.Route("/dishes", func(r chi.Router) {
						r.Get("/", dep.MenuHandler.ListDishes)
						r.Post("/", dep.MenuHandler.CreateDish)
						r.Patch("/{dishID}", dep.MenuHandler.UpdateDish)
						r.Delete("/{dishID}", dep.MenuHandler.DeleteDish)
						// image upload needs a higher body limit than the 1MB global default
						r.With(middleware.BodyLimit(6<<20)).Post("/{dishID}/image", dep.MenuHandler.UploadDishImage)
					})
				})
			})
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
