package payment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slogantech/intelliweb/internal/models"
	"github.com/slogantech/intelliweb/internal/paymentprovider"
	"github.com/slogantech/intelliweb/internal/services/payment"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) CreateCustomer(ctx context.Context, email, name string) (*paymentprovider.Customer, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Customer), args.Error(1)
}

func (m *ProviderMock) CreateCheckoutSession(ctx context.Context, req paymentprovider.CheckoutSessionRequest) (*paymentprovider.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CheckoutSession), args.Error(1)
}

type CustomerRepoMock struct {
	mock.Mock
}

func (m *CustomerRepoMock) SetStripeCustomerID(ctx context.Context, userUID, customerID string) error {
	args := m.Called(ctx, userUID, customerID)
	return args.Error(0)
}

func newPaymentService(provider *ProviderMock, repo *CustomerRepoMock) *payment.PaymentService {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return payment.New(log, provider, repo, payment.Config{
		SuccessURL: "https://example.com/success",
		CancelURL:  "https://example.com/cancel",
		AllowedPrices: map[string]models.Tier{
			"price_basic":   models.TierBasic,
			"price_premium": models.TierPremium,
		},
	})
}

func TestPaymentService_CreateCheckout(t *testing.T) {
	existingID := "cus_existing"

	tests := []struct {
		name       string
		user       *models.User
		priceID    string
		setupMocks func(p *ProviderMock, r *CustomerRepoMock)
		wantURL    string
		wantErr    error
	}{
		{
			name:    "new customer is registered first",
			user:    &models.User{UUID: "uid-1", Email: "alice@example.com", FullName: "Alice"},
			priceID: "price_basic",
			setupMocks: func(p *ProviderMock, r *CustomerRepoMock) {
				p.On("CreateCustomer", mock.Anything, "alice@example.com", "Alice").
					Return(&paymentprovider.Customer{ID: "cus_new"}, nil).Once()
				r.On("SetStripeCustomerID", mock.Anything, "uid-1", "cus_new").Return(nil).Once()
				p.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req paymentprovider.CheckoutSessionRequest) bool {
					return req.CustomerID == "cus_new" &&
						req.PriceID == "price_basic" &&
						req.Metadata["user_uid"] == "uid-1"
				})).Return(&paymentprovider.CheckoutSession{ID: "cs_1", URL: "https://pay.example/cs_1"}, nil).Once()
			},
			wantURL: "https://pay.example/cs_1",
		},
		{
			name:    "existing customer is reused",
			user:    &models.User{UUID: "uid-1", Email: "alice@example.com", StripeCustomerID: &existingID},
			priceID: "price_premium",
			setupMocks: func(p *ProviderMock, _ *CustomerRepoMock) {
				p.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req paymentprovider.CheckoutSessionRequest) bool {
					return req.CustomerID == existingID
				})).Return(&paymentprovider.CheckoutSession{ID: "cs_2", URL: "https://pay.example/cs_2"}, nil).Once()
			},
			wantURL: "https://pay.example/cs_2",
		},
		{
			name:       "unknown price rejected before provider call",
			user:       &models.User{UUID: "uid-1"},
			priceID:    "price_mystery",
			setupMocks: func(_ *ProviderMock, _ *CustomerRepoMock) {},
			wantErr:    payment.ErrUnknownPrice,
		},
		{
			name:    "provider failure",
			user:    &models.User{UUID: "uid-1", Email: "alice@example.com", StripeCustomerID: &existingID},
			priceID: "price_basic",
			setupMocks: func(p *ProviderMock, _ *CustomerRepoMock) {
				p.On("CreateCheckoutSession", mock.Anything, mock.Anything).
					Return(nil, errors.New("provider down")).Once()
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(ProviderMock)
			repo := new(CustomerRepoMock)
			svc := newPaymentService(provider, repo)

			tt.setupMocks(provider, repo)

			session, err := svc.CreateCheckout(context.Background(), tt.user, tt.priceID)
			if tt.wantURL != "" {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantURL, session.URL)
			} else {
				assert.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			}

			provider.AssertExpectations(t)
			repo.AssertExpectations(t)
		})
	}
}
