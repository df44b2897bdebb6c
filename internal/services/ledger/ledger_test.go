package ledger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slogantech/intelliweb/internal/models"
	"github.com/slogantech/intelliweb/internal/services/ledger"
)

type SubscriptionRepoMock struct {
	mock.Mock
}

func (m *SubscriptionRepoMock) FindActiveRecord(ctx context.Context, userUID string) (*models.SubscriptionRecord, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionRecord), args.Error(1)
}

func (m *SubscriptionRepoMock) ListRecords(ctx context.Context, userUID string) ([]*models.SubscriptionRecord, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionRecord), args.Error(1)
}

func (m *SubscriptionRepoMock) ApplyTransition(ctx context.Context, t models.SubscriptionTransition) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *SubscriptionRepoMock) FindSubjectByExternalRef(ctx context.Context, externalRef string) (string, error) {
	args := m.Called(ctx, externalRef)
	return args.String(0), args.Error(1)
}

func newLedger(repo *SubscriptionRepoMock) *ledger.Ledger {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return ledger.New(repo, log, 5*time.Second)
}

func TestLedger_CurrentRecord(t *testing.T) {
	repo := new(SubscriptionRepoMock)
	l := newLedger(repo)

	rec := &models.SubscriptionRecord{
		UserUID:   "uid-1",
		Tier:      models.TierBasic,
		Status:    models.StatusActive,
		StartDate: time.Now().Add(-time.Hour),
	}
	repo.On("FindActiveRecord", mock.Anything, "uid-1").Return(rec, nil).Once()
	repo.On("FindActiveRecord", mock.Anything, "uid-2").Return(nil, nil).Once()

	got, err := l.CurrentRecord(context.Background(), "uid-1")
	assert.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.True(t, got.Active())

	none, err := l.CurrentRecord(context.Background(), "uid-2")
	assert.NoError(t, err)
	assert.Nil(t, none)
	assert.False(t, none.Active())

	repo.AssertExpectations(t)
}

func TestLedger_ApplyTransition(t *testing.T) {
	tests := []struct {
		name       string
		transition models.SubscriptionTransition
		setupMocks func(r *SubscriptionRepoMock)
		wantErr    error
		errMsg     string
	}{
		{
			name: "valid transition",
			transition: models.SubscriptionTransition{
				UserUID:     "uid-1",
				Tier:        models.TierPremium,
				Status:      models.StatusActive,
				ExternalRef: "sub_1",
				EffectiveAt: time.Now(),
			},
			setupMocks: func(r *SubscriptionRepoMock) {
				r.On("ApplyTransition", mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "inherited tier is allowed",
			transition: models.SubscriptionTransition{
				UserUID:     "uid-1",
				Tier:        "",
				Status:      models.StatusPastDue,
				ExternalRef: "sub_1",
				EffectiveAt: time.Now(),
			},
			setupMocks: func(r *SubscriptionRepoMock) {
				r.On("ApplyTransition", mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "unknown status rejected",
			transition: models.SubscriptionTransition{
				UserUID: "uid-1",
				Tier:    models.TierBasic,
				Status:  "suspended",
			},
			setupMocks: func(_ *SubscriptionRepoMock) {},
			errMsg:     "unknown status",
		},
		{
			name: "unknown tier rejected",
			transition: models.SubscriptionTransition{
				UserUID: "uid-1",
				Tier:    "platinum",
				Status:  models.StatusActive,
			},
			setupMocks: func(_ *SubscriptionRepoMock) {},
			errMsg:     "unknown tier",
		},
		{
			name: "stale transition passes through",
			transition: models.SubscriptionTransition{
				UserUID:     "uid-1",
				Tier:        models.TierBasic,
				Status:      models.StatusCanceled,
				EffectiveAt: time.Now().Add(-48 * time.Hour),
			},
			setupMocks: func(r *SubscriptionRepoMock) {
				r.On("ApplyTransition", mock.Anything, mock.Anything).Return(models.ErrStaleTransition).Once()
			},
			wantErr: models.ErrStaleTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(SubscriptionRepoMock)
			l := newLedger(repo)

			tt.setupMocks(repo)

			err := l.ApplyTransition(context.Background(), tt.transition)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestLedger_SubjectByExternalRef(t *testing.T) {
	repo := new(SubscriptionRepoMock)
	l := newLedger(repo)

	repo.On("FindSubjectByExternalRef", mock.Anything, "sub_1").Return("uid-1", nil).Once()
	repo.On("FindSubjectByExternalRef", mock.Anything, "sub_ghost").Return("", models.ErrNotFound).Once()

	uid, err := l.SubjectByExternalRef(context.Background(), "sub_1")
	assert.NoError(t, err)
	assert.Equal(t, "uid-1", uid)

	_, err = l.SubjectByExternalRef(context.Background(), "sub_ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)

	repo.AssertExpectations(t)
}
