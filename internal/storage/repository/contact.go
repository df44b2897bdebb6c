package repository

import (
	"context"
	"fmt"

	"github.com/slogantech/intelliweb/internal/models"
)

// CreateContactMessage сохраняет сообщение из формы обратной связи.
func (s *Storage) CreateContactMessage(ctx context.Context, msg models.ContactMessage) (int64, error) {
	const op = "storage.CreateContactMessage"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO contact_messages (name, email, subject, message)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		msg.Name, msg.Email, msg.Subject, msg.Message).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}
