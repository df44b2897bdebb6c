// Package ledger реализует журнал подписок — авторитетный источник
// текущего уровня и статуса подписки пользователя.
//
// История append-only: каждая смена состояния закрывает открытую запись
// и добавляет новую, поэтому состояние на любой момент в прошлом
// восстановимо для аудита и разбора споров. "Текущая" запись — это
// представление поверх истории, а не изменяемая строка.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slogantech/intelliweb/internal/models"
)

// SubscriptionRepository описывает контракт хранилища журнала подписок.
type SubscriptionRepository interface {
	// FindActiveRecord возвращает открытую запись пользователя или nil.
	FindActiveRecord(ctx context.Context, userUID string) (*models.SubscriptionRecord, error)

	// ListRecords возвращает полную историю записей пользователя.
	ListRecords(ctx context.Context, userUID string) ([]*models.SubscriptionRecord, error)

	// ApplyTransition транзакционно применяет переход состояния.
	ApplyTransition(ctx context.Context, t models.SubscriptionTransition) error

	// FindSubjectByExternalRef возвращает UID владельца подписки провайдера.
	FindSubjectByExternalRef(ctx context.Context, externalRef string) (string, error)
}

// Ledger предоставляет чтение текущего состояния подписки и единственную
// точку мутации ApplyTransition, вызываемую только обработчиком вебхуков.
type Ledger struct {
	repo         SubscriptionRepository
	log          *slog.Logger
	applyTimeout time.Duration
}

// New создаёт журнал подписок. applyTimeout ограничивает время
// транзакции применения перехода; по истечении переход отклоняется,
// полагаясь на повторную доставку события провайдером.
func New(repo SubscriptionRepository, log *slog.Logger, applyTimeout time.Duration) *Ledger {
	return &Ledger{
		repo:         repo,
		log:          log,
		applyTimeout: applyTimeout,
	}
}

// CurrentRecord возвращает действующую запись подписки пользователя
// или nil, если открытой записи нет.
func (l *Ledger) CurrentRecord(ctx context.Context, userUID string) (*models.SubscriptionRecord, error) {
	const op = "ledger.CurrentRecord"
	rec, err := l.repo.FindActiveRecord(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// History возвращает полную историю записей пользователя для аудита.
func (l *Ledger) History(ctx context.Context, userUID string) ([]*models.SubscriptionRecord, error) {
	const op = "ledger.History"
	records, err := l.repo.ListRecords(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// SubjectByExternalRef возвращает UID владельца подписки провайдера.
func (l *Ledger) SubjectByExternalRef(ctx context.Context, externalRef string) (string, error) {
	const op = "ledger.SubjectByExternalRef"
	uid, err := l.repo.FindSubjectByExternalRef(ctx, externalRef)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// ApplyTransition применяет переход состояния подписки.
//
// Переходы одного пользователя сериализуются на уровне хранилища,
// переход старше открытой записи возвращает models.ErrStaleTransition.
// Транзакция ограничена по времени applyTimeout.
func (l *Ledger) ApplyTransition(ctx context.Context, t models.SubscriptionTransition) error {
	const op = "ledger.ApplyTransition"
	if !t.Status.Valid() {
		return fmt.Errorf("%s: unknown status %q", op, t.Status)
	}
	if t.Tier != "" && !t.Tier.Valid() {
		return fmt.Errorf("%s: unknown tier %q", op, t.Tier)
	}

	ctx, cancel := context.WithTimeout(ctx, l.applyTimeout)
	defer cancel()

	if err := l.repo.ApplyTransition(ctx, t); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	l.log.Info("subscription transition applied",
		slog.String("user_uid", t.UserUID),
		slog.String("tier", string(t.Tier)),
		slog.String("status", string(t.Status)),
		slog.Time("effective_at", t.EffectiveAt))
	return nil
}
