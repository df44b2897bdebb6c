// Package payment создаёт сессии оплаты подписки у платёжного провайдера.
// При первом обращении пользователя регистрирует его как покупателя
// и сохраняет идентификатор для последующих платежей.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/slogantech/intelliweb/internal/models"
	"github.com/slogantech/intelliweb/internal/paymentprovider"
)

// ErrUnknownPrice возвращается при запросе плана, не входящего в список допустимых.
var ErrUnknownPrice = errors.New("unknown price id")

// ProviderClient описывает операции платёжного провайдера.
type ProviderClient interface {
	CreateCustomer(ctx context.Context, email, name string) (*paymentprovider.Customer, error)
	CreateCheckoutSession(ctx context.Context, req paymentprovider.CheckoutSessionRequest) (*paymentprovider.CheckoutSession, error)
}

// CustomerRepository сохраняет идентификатор покупателя пользователя.
type CustomerRepository interface {
	SetStripeCustomerID(ctx context.Context, userUID, customerID string) error
}

// Config — адреса возврата после оплаты и допустимые цены планов.
type Config struct {
	SuccessURL    string
	CancelURL     string
	AllowedPrices map[string]models.Tier
}

// PaymentService — бизнес-логика создания сессий оплаты.
type PaymentService struct {
	provider ProviderClient
	repo     CustomerRepository
	cfg      Config
	log      *slog.Logger
}

// New создаёт PaymentService.
func New(log *slog.Logger, provider ProviderClient, repo CustomerRepository, cfg Config) *PaymentService {
	return &PaymentService{
		provider: provider,
		repo:     repo,
		cfg:      cfg,
		log:      log,
	}
}

// CreateCheckout создаёт сессию оплаты плана для пользователя.
// Неизвестный идентификатор цены отклоняется до обращения к провайдеру.
func (s *PaymentService) CreateCheckout(ctx context.Context, user *models.User, priceID string) (*paymentprovider.CheckoutSession, error) {
	const op = "payment.CreateCheckout"

	if _, ok := s.cfg.AllowedPrices[priceID]; !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownPrice, priceID)
	}

	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}
	if customerID == "" {
		customer, err := s.provider.CreateCustomer(ctx, user.Email, user.FullName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = s.repo.SetStripeCustomerID(ctx, user.UUID, customer.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		customerID = customer.ID
		s.log.Info("payment customer created",
			slog.String("user_uid", user.UUID), slog.String("customer_id", customerID))
	}

	session, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CheckoutSessionRequest{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
		Metadata:   map[string]string{"user_uid": user.UUID},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}
