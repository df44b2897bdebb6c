package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slogantech/intelliweb/internal/models"
)

// ListProducts возвращает товары каталога.
func (s *Storage) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "storage.ListProducts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, category, description, details, price,
			      stripe_price_id, image_url, required_tier, is_featured
			  FROM products
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetProduct возвращает товар по ID.
func (s *Storage) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "storage.GetProduct"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, category, description, details, price,
			      stripe_price_id, image_url, required_tier, is_featured
			  FROM products
			  WHERE id = $1`
	p, err := scanProduct(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var stripePriceID, imageURL sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.Details,
		&p.Price, &stripePriceID, &imageURL, &p.RequiredTier, &p.IsFeatured); err != nil {
		return nil, err
	}
	if stripePriceID.Valid {
		p.StripePriceID = &stripePriceID.String
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	return &p, nil
}
