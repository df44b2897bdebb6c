package access_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	customjwt "github.com/slogantech/intelliweb/internal/lib/jwt"
	"github.com/slogantech/intelliweb/internal/models"
	"github.com/slogantech/intelliweb/internal/services/access"
)

type TokenParserMock struct {
	mock.Mock
}

func (m *TokenParserMock) ParseToken(tokenStr string) (*customjwt.CustomClaims, error) {
	args := m.Called(tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

type LedgerReaderMock struct {
	mock.Mock
}

func (m *LedgerReaderMock) CurrentRecord(ctx context.Context, userUID string) (*models.SubscriptionRecord, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionRecord), args.Error(1)
}

type SubjectResolverMock struct {
	mock.Mock
}

func (m *SubjectResolverMock) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestGuard_Authenticate(t *testing.T) {
	claims := &customjwt.CustomClaims{Username: "alice", Role: models.RoleUser}

	tests := []struct {
		name       string
		authHeader string
		setupMocks func(p *TokenParserMock)
		wantErr    error
	}{
		{
			name:       "valid bearer token",
			authHeader: "Bearer good-token",
			setupMocks: func(p *TokenParserMock) {
				p.On("ParseToken", "good-token").Return(claims, nil).Once()
			},
		},
		{
			name:       "missing header",
			authHeader: "",
			setupMocks: func(_ *TokenParserMock) {},
			wantErr:    models.ErrUnauthenticated,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic abc",
			setupMocks: func(_ *TokenParserMock) {},
			wantErr:    models.ErrUnauthenticated,
		},
		{
			name:       "expired token",
			authHeader: "Bearer stale-token",
			setupMocks: func(p *TokenParserMock) {
				p.On("ParseToken", "stale-token").Return(nil, models.ErrExpiredToken).Once()
			},
			wantErr: models.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := new(TokenParserMock)
			guard := access.New(parser, new(LedgerReaderMock), new(SubjectResolverMock))

			tt.setupMocks(parser)

			req := httptest.NewRequest("GET", "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			got, err := guard.Authenticate(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, claims, got)
			}
			parser.AssertExpectations(t)
		})
	}
}

func TestGuard_RequireRole(t *testing.T) {
	guard := access.New(new(TokenParserMock), new(LedgerReaderMock), new(SubjectResolverMock))

	tests := []struct {
		name     string
		claims   *customjwt.CustomClaims
		required models.Role
		wantErr  error
	}{
		{
			name:     "admin meets admin",
			claims:   &customjwt.CustomClaims{Username: "root", Role: models.RoleAdmin},
			required: models.RoleAdmin,
		},
		{
			name:     "admin meets user",
			claims:   &customjwt.CustomClaims{Username: "root", Role: models.RoleAdmin},
			required: models.RoleUser,
		},
		{
			name:     "user does not meet admin",
			claims:   &customjwt.CustomClaims{Username: "alice", Role: models.RoleUser},
			required: models.RoleAdmin,
			wantErr:  models.ErrForbidden,
		},
		{
			name:     "nil claims",
			claims:   nil,
			required: models.RoleUser,
			wantErr:  models.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.RequireRole(tt.claims, tt.required)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGuard_RequireTier(t *testing.T) {
	claims := &customjwt.CustomClaims{Username: "alice", Role: models.RoleUser}
	user := &models.User{UUID: "uid-1", Username: "alice"}

	activeRecord := func(tier models.Tier) *models.SubscriptionRecord {
		return &models.SubscriptionRecord{
			UserUID:   "uid-1",
			Tier:      tier,
			Status:    models.StatusActive,
			StartDate: time.Now().Add(-time.Hour),
		}
	}

	tests := []struct {
		name       string
		minimum    models.Tier
		setupMocks func(l *LedgerReaderMock, s *SubjectResolverMock)
		wantErr    error
	}{
		{
			name:    "premium meets premium",
			minimum: models.TierPremium,
			setupMocks: func(l *LedgerReaderMock, s *SubjectResolverMock) {
				s.On("GetByUsername", mock.Anything, "alice").Return(user, nil).Once()
				l.On("CurrentRecord", mock.Anything, "uid-1").Return(activeRecord(models.TierPremium), nil).Once()
			},
		},
		{
			name:    "ultimate meets premium",
			minimum: models.TierPremium,
			setupMocks: func(l *LedgerReaderMock, s *SubjectResolverMock) {
				s.On("GetByUsername", mock.Anything, "alice").Return(user, nil).Once()
				l.On("CurrentRecord", mock.Anything, "uid-1").Return(activeRecord(models.TierUltimate), nil).Once()
			},
		},
		{
			name:    "basic does not meet premium",
			minimum: models.TierPremium,
			setupMocks: func(l *LedgerReaderMock, s *SubjectResolverMock) {
				s.On("GetByUsername", mock.Anything, "alice").Return(user, nil).Once()
				l.On("CurrentRecord", mock.Anything, "uid-1").Return(activeRecord(models.TierBasic), nil).Once()
			},
			wantErr: models.ErrForbidden,
		},
		{
			name:    "no active record",
			minimum: models.TierBasic,
			setupMocks: func(l *LedgerReaderMock, s *SubjectResolverMock) {
				s.On("GetByUsername", mock.Anything, "alice").Return(user, nil).Once()
				l.On("CurrentRecord", mock.Anything, "uid-1").Return(nil, nil).Once()
			},
			wantErr: models.ErrForbidden,
		},
		{
			name:    "past due record is not active",
			minimum: models.TierBasic,
			setupMocks: func(l *LedgerReaderMock, s *SubjectResolverMock) {
				rec := activeRecord(models.TierPremium)
				rec.Status = models.StatusPastDue
				s.On("GetByUsername", mock.Anything, "alice").Return(user, nil).Once()
				l.On("CurrentRecord", mock.Anything, "uid-1").Return(rec, nil).Once()
			},
			wantErr: models.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := new(LedgerReaderMock)
			subjects := new(SubjectResolverMock)
			guard := access.New(new(TokenParserMock), ledger, subjects)

			tt.setupMocks(ledger, subjects)

			err := guard.RequireTier(context.Background(), claims, tt.minimum)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			ledger.AssertExpectations(t)
			subjects.AssertExpectations(t)
		})
	}
}
