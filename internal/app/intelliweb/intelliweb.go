// Package intelliweb собирает приложение: подключения к базе и кешу,
// миграции, сервисы и HTTP-сервер с graceful shutdown.
package intelliweb

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/slogantech/intelliweb/internal/cache"
	"github.com/slogantech/intelliweb/internal/config"
	"github.com/slogantech/intelliweb/internal/lib/jwt"
	"github.com/slogantech/intelliweb/internal/lib/password"
	"github.com/slogantech/intelliweb/internal/migrations"
	"github.com/slogantech/intelliweb/internal/models"
	"github.com/slogantech/intelliweb/internal/paymentprovider"
	"github.com/slogantech/intelliweb/internal/services/access"
	authservice "github.com/slogantech/intelliweb/internal/services/auth"
	contentservice "github.com/slogantech/intelliweb/internal/services/content"
	ledgerservice "github.com/slogantech/intelliweb/internal/services/ledger"
	paymentservice "github.com/slogantech/intelliweb/internal/services/payment"
	webhookservice "github.com/slogantech/intelliweb/internal/services/webhook"
	"github.com/slogantech/intelliweb/internal/storage/repository"
)

// App держит HTTP-сервер и ресурсы, закрываемые при остановке.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New инициализирует все зависимости приложения по конфигу.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	priceTiers := map[string]models.Tier{
		cfg.Stripe.PriceIDBasic:    models.TierBasic,
		cfg.Stripe.PriceIDPremium:  models.TierPremium,
		cfg.Stripe.PriceIDUltimate: models.TierUltimate,
	}

	jwtMaker := jwt.NewMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	hasher := password.NewHasher(cfg.PasswordPolicy.BcryptCost)

	authService := authservice.NewAuthService(db, jwtMaker, hasher)
	ledger := ledgerservice.New(db, logger, cfg.Webhook.ApplyTimeout)
	guard := access.New(jwtMaker, ledger, authService)
	contentService := contentservice.NewContentService(db, cacheRedis, logger)

	providerClient := paymentprovider.NewClient(cfg.Stripe.SecretKey)
	paymentService := paymentservice.New(logger, providerClient, db, paymentservice.Config{
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
		AllowedPrices: priceTiers,
	})

	reconciler := webhookservice.New(logger, ledger, cacheRedis, webhookservice.Config{
		Secret:      cfg.Stripe.WebhookSecret,
		DedupWindow: cfg.Webhook.DedupWindow,
		Tolerance:   5 * time.Minute,
		PriceTiers:  priceTiers,
	})

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:       authService,
		Ledger:     ledger,
		Guard:      guard,
		Content:    contentService,
		Payment:    paymentService,
		Reconciler: reconciler,
		Storage:    db,
		Cache:      cacheRedis,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		a.cache.Db.Close()
		return err
	}
}
