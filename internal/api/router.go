package api

import (
	"net/http"
	"time"

	"deals_api/internal/api/handler"
	"deals_api/internal/api/middleware"
	"deals_api/internal/app/service"
	"deals_api/internal/common/security"
	"deals_api/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	categoryService *service.CategoryService,
	productService *service.ProductService,
	loadLogService *service.LoadLogService,
	denylist security.Denylist,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.AppConfig.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Only reads "Authorization: Bearer T"; Authenticator decides per route.
	r.Use(jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromHeader))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authenticate := middleware.Authenticator(denylist)

	authHandler := handler.NewAuthHandler(authService, denylist)
	r.Route("/auth", authHandler.RegisterRoutes)

	r.With(authenticate, middleware.ActiveUserOnly).Get("/", handler.CurrentUser)

	categoryHandler := handler.NewCategoryHandler(categoryService)
	r.Route("/category", func(cr chi.Router) {
		cr.Use(authenticate)
		categoryHandler.RegisterRoutes(cr)
	})

	productHandler := handler.NewProductHandler(productService, loadLogService)
	r.Route("/product", func(pr chi.Router) {
		pr.Use(authenticate)
		productHandler.RegisterRoutes(pr)
	})

	return r
}
