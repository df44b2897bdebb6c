package middlewarectx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slogantech/intelliweb/internal/http/middlewarectx"
	customjwt "github.com/slogantech/intelliweb/internal/lib/jwt"
	"github.com/slogantech/intelliweb/internal/models"

	"io"
	"log/slog"
)

// Mock for Guard
type GuardMock struct {
	mock.Mock
}

func (m *GuardMock) Authenticate(r *http.Request) (*customjwt.CustomClaims, error) {
	args := m.Called(r)
	claims, _ := args.Get(0).(*customjwt.CustomClaims)
	return claims, args.Error(1)
}

func (m *GuardMock) RequireRole(claims *customjwt.CustomClaims, required models.Role) error {
	args := m.Called(claims, required)
	return args.Error(0)
}

func (m *GuardMock) RequireTier(ctx context.Context, claims *customjwt.CustomClaims, minimumTier models.Tier) error {
	args := m.Called(ctx, claims, minimumTier)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	logger := newNoopLogger()
	validClaims := &customjwt.CustomClaims{Username: "alice", Role: models.RoleUser}

	handlerCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		claims, ok := middlewarectx.ClaimsFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, models.RoleUser, claims.Role)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		mockClaims     *customjwt.CustomClaims
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "authentication failure",
			mockErr:        models.ErrUnauthenticated,
			wantStatusCode: http.StatusUnauthorized,
			wantCalled:     false,
		},
		{
			name:           "valid token",
			mockClaims:     validClaims,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false
			guard := new(GuardMock)
			guard.On("Authenticate", mock.Anything).Return(tt.mockClaims, tt.mockErr).Once()

			mw := middlewarectx.JWTMiddleware(guard, logger)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			guard.AssertExpectations(t)
		})
	}
}

func TestRequireRoleMiddleware(t *testing.T) {
	logger := newNoopLogger()
	claims := &customjwt.CustomClaims{Username: "alice", Role: models.RoleUser}

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		withClaims     bool
		roleErr        error
		wantStatusCode int
	}{
		{
			name:           "missing claims",
			withClaims:     false,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "insufficient role",
			withClaims:     true,
			roleErr:        models.ErrForbidden,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "sufficient role",
			withClaims:     true,
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := new(GuardMock)
			if tt.withClaims {
				guard.On("RequireRole", claims, models.RoleAdmin).Return(tt.roleErr).Once()
			}

			mw := middlewarectx.RequireRoleMiddleware(guard, logger, models.RoleAdmin)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.withClaims {
				ctx := context.WithValue(req.Context(), middlewarectx.ClaimsKey, claims)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			guard.AssertExpectations(t)
		})
	}
}

func TestRequireTierMiddleware(t *testing.T) {
	logger := newNoopLogger()
	claims := &customjwt.CustomClaims{Username: "alice", Role: models.RoleUser}

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		tierErr        error
		wantStatusCode int
	}{
		{
			name:           "active subscription of sufficient tier",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "insufficient tier",
			tierErr:        models.ErrForbidden,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "ledger read failure",
			tierErr:        models.ErrStorageUnavailable,
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := new(GuardMock)
			guard.On("RequireTier", mock.Anything, claims, models.TierPremium).Return(tt.tierErr).Once()

			mw := middlewarectx.RequireTierMiddleware(guard, logger, models.TierPremium)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/products/1", nil)
			ctx := context.WithValue(req.Context(), middlewarectx.ClaimsKey, claims)
			req = req.WithContext(ctx)
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			guard.AssertExpectations(t)
		})
	}
}
