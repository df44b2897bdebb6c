// Package intelliweb предоставляет маршруты приложения.
package intelliweb

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/slogantech/intelliweb/internal/cache"
	"github.com/slogantech/intelliweb/internal/http/handlers/admin/setrole"
	blogcreate "github.com/slogantech/intelliweb/internal/http/handlers/blog/create"
	bloglist "github.com/slogantech/intelliweb/internal/http/handlers/blog/list"
	blogread "github.com/slogantech/intelliweb/internal/http/handlers/blog/read"
	blogremove "github.com/slogantech/intelliweb/internal/http/handlers/blog/remove"
	blogupdate "github.com/slogantech/intelliweb/internal/http/handlers/blog/update"
	contactcreate "github.com/slogantech/intelliweb/internal/http/handlers/contact/create"
	"github.com/slogantech/intelliweb/internal/http/handlers/auth/login"
	"github.com/slogantech/intelliweb/internal/http/handlers/auth/register"
	"github.com/slogantech/intelliweb/internal/http/handlers/health"
	"github.com/slogantech/intelliweb/internal/http/handlers/payment/checkoutcreate"
	"github.com/slogantech/intelliweb/internal/http/handlers/payment/webhookreceive"
	productdetail "github.com/slogantech/intelliweb/internal/http/handlers/product/detail"
	productlist "github.com/slogantech/intelliweb/internal/http/handlers/product/list"
	profilesubscription "github.com/slogantech/intelliweb/internal/http/handlers/profile/subscription"
	profileupdate "github.com/slogantech/intelliweb/internal/http/handlers/profile/update"
	"github.com/slogantech/intelliweb/internal/http/middlewarectx"
	"github.com/slogantech/intelliweb/internal/models"
	"github.com/slogantech/intelliweb/internal/services/access"
	authservice "github.com/slogantech/intelliweb/internal/services/auth"
	contentservice "github.com/slogantech/intelliweb/internal/services/content"
	ledgerservice "github.com/slogantech/intelliweb/internal/services/ledger"
	paymentservice "github.com/slogantech/intelliweb/internal/services/payment"
	webhookservice "github.com/slogantech/intelliweb/internal/services/webhook"
	"github.com/slogantech/intelliweb/internal/storage/repository"
)

// Services — собранные сервисы приложения для регистрации маршрутов.
type Services struct {
	Auth       *authservice.AuthService
	Ledger     *ledgerservice.Ledger
	Guard      *access.Guard
	Content    *contentservice.ContentService
	Payment    *paymentservice.PaymentService
	Reconciler *webhookservice.Reconciler
	Storage    *repository.Storage
	Cache      *cache.Cache
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/blog", bloglist.New(logger, s.Content).ServeHTTP)
		r.Get("/blog/{slug}", blogread.New(logger, s.Content).ServeHTTP)
		r.Get("/products", productlist.New(logger, s.Content).ServeHTTP)
		r.Post("/contact", contactcreate.New(logger, s.Content).ServeHTTP)
		r.Get("/health", health.New(logger, s.Storage, s.Cache).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Guard, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Put("/profile", profileupdate.New(logger, s.Auth).ServeHTTP)
			r.Get("/profile/subscription", profilesubscription.New(logger, s.Auth, s.Ledger).ServeHTTP)
			r.Post("/payments/checkout", checkoutcreate.New(logger, s.Auth, s.Payment).ServeHTTP)

			// Подробные карточки товаров доступны по подписке premium и выше
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireTierMiddleware(s.Guard, logger, models.TierPremium))
				r.Get("/products/{id}", productdetail.New(logger, s.Content).ServeHTTP)
			})

			// Административная группа
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoleMiddleware(s.Guard, logger, models.RoleAdmin))
				r.Post("/admin/users/role", setrole.New(logger, s.Auth).ServeHTTP)
				r.Post("/admin/blog", blogcreate.New(logger, s.Auth, s.Content).ServeHTTP)
				r.Put("/admin/blog/{id}", blogupdate.New(logger, s.Content).ServeHTTP)
				r.Delete("/admin/blog/{id}", blogremove.New(logger, s.Content).ServeHTTP)
			})
		})

		// Webhook endpoint (без аутентификации, подпись в заголовке)
		r.Post("/payments/webhook", webhookreceive.New(logger, s.Reconciler).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
