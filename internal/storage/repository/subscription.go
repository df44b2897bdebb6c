package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slogantech/intelliweb/internal/models"
)

// FindActiveRecord возвращает открытую запись журнала подписок пользователя
// или nil, если открытой записи нет.
func (s *Storage) FindActiveRecord(ctx context.Context, userUID string) (*models.SubscriptionRecord, error) {
	const op = "storage.FindActiveRecord"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, tier, status, start_date, end_date, external_ref, created_at
			  FROM subscription_records
			  WHERE user_uid = $1 AND end_date IS NULL
			  ORDER BY start_date DESC
			  LIMIT 1`
	rec, err := scanRecord(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// ListRecords возвращает полную историю записей пользователя,
// от новых к старым. История append-only и пригодна для аудита.
func (s *Storage) ListRecords(ctx context.Context, userUID string) ([]*models.SubscriptionRecord, error) {
	const op = "storage.ListRecords"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, tier, status, start_date, end_date, external_ref, created_at
			  FROM subscription_records
			  WHERE user_uid = $1
			  ORDER BY start_date DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionRecord
	for rows.Next() {
		var rec models.SubscriptionRecord
		var endDate sql.NullTime
		if err = rows.Scan(&rec.ID, &rec.UserUID, &rec.Tier, &rec.Status,
			&rec.StartDate, &endDate, &rec.ExternalRef, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if endDate.Valid {
			rec.EndDate = &endDate.Time
		}
		result = append(result, &rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindSubjectByExternalRef возвращает UID пользователя, которому принадлежит
// подписка с указанным идентификатором у платёжного провайдера.
func (s *Storage) FindSubjectByExternalRef(ctx context.Context, externalRef string) (string, error) {
	const op = "storage.FindSubjectByExternalRef"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid
			  FROM subscription_records
			  WHERE external_ref = $1
			  ORDER BY start_date DESC
			  LIMIT 1`
	var userUID string
	if err := s.DB.QueryRowContext(ctx, query, externalRef).Scan(&userUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, nil
}

// ApplyTransition применяет переход состояния подписки в одной транзакции.
//
// Переходы одного пользователя сериализуются advisory-блокировкой, поэтому
// конкурирующие доставки вебхуков не могут открыть две активные записи.
// Переход старше открытой записи отклоняется с models.ErrStaleTransition.
// Открытая запись закрывается моментом EffectiveAt; новая запись открывается
// только для статусов active и past_due — отмена и деактивация лишь закрывают.
func (s *Storage) ApplyTransition(ctx context.Context, t models.SubscriptionTransition) error {
	const op = "storage.ApplyTransition"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text))`, t.UserUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	current, err := scanRecord(tx.QueryRowContext(ctx,
		`SELECT id, user_uid, tier, status, start_date, end_date, external_ref, created_at
		 FROM subscription_records
		 WHERE user_uid = $1 AND end_date IS NULL
		 ORDER BY start_date DESC
		 LIMIT 1
		 FOR UPDATE`, t.UserUID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, err)
	}

	tier := t.Tier
	if current != nil {
		if t.EffectiveAt.Before(current.StartDate) {
			return fmt.Errorf("%s: %w", op, models.ErrStaleTransition)
		}
		if tier == "" {
			tier = current.Tier
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE subscription_records SET end_date = $1 WHERE id = $2`,
			t.EffectiveAt, current.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if tier == "" {
		tier = models.TierNone
	}

	if t.Status == models.StatusActive || t.Status == models.StatusPastDue {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO subscription_records (user_uid, tier, status, start_date, external_ref)
			 VALUES ($1, $2, $3, $4, $5)`,
			t.UserUID, tier, t.Status, t.EffectiveAt, t.ExternalRef); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.SubscriptionRecord, error) {
	var rec models.SubscriptionRecord
	var endDate sql.NullTime
	if err := row.Scan(&rec.ID, &rec.UserUID, &rec.Tier, &rec.Status,
		&rec.StartDate, &endDate, &rec.ExternalRef, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if endDate.Valid {
		rec.EndDate = &endDate.Time
	}
	return &rec, nil
}
