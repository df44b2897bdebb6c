package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slogantech/intelliweb/internal/models"
)

// CreateBlogPost сохраняет новую запись блога и возвращает её ID.
// Занятый slug транслируется в models.ErrDuplicateIdentity.
func (s *Storage) CreateBlogPost(ctx context.Context, post models.BlogPost) (int64, error) {
	const op = "storage.CreateBlogPost"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO blog_posts (title, slug, content, author_uid, tags, image_url)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		post.Title, post.Slug, post.Content, post.AuthorUID, post.Tags, post.ImageURL).Scan(&newID); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, models.ErrDuplicateIdentity)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateBlogPost обновляет заголовок, текст и теги записи блога.
func (s *Storage) UpdateBlogPost(ctx context.Context, id int64, title, content, tags string) error {
	const op = "storage.UpdateBlogPost"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE blog_posts
			  SET title = $1, content = $2, tags = $3, updated_at = NOW()
			  WHERE id = $4`
	res, err := s.DB.ExecContext(ctx, query, title, content, tags, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// DeleteBlogPost удаляет запись блога.
func (s *Storage) DeleteBlogPost(ctx context.Context, id int64) error {
	const op = "storage.DeleteBlogPost"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// GetBlogPostBySlug возвращает запись блога по её slug.
func (s *Storage) GetBlogPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	const op = "storage.GetBlogPostBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, slug, content, author_uid, tags, image_url, published_at, updated_at
			  FROM blog_posts
			  WHERE slug = $1`
	p := &models.BlogPost{}
	var imageURL sql.NullString
	var updatedAt sql.NullTime
	row := s.DB.QueryRowContext(ctx, query, slug)
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.AuthorUID,
		&p.Tags, &imageURL, &p.PublishedAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.Time
	}
	return p, nil
}

// ListBlogPosts возвращает записи блога от новых к старым.
func (s *Storage) ListBlogPosts(ctx context.Context, limit, offset int) ([]*models.BlogPost, error) {
	const op = "storage.ListBlogPosts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, slug, content, author_uid, tags, image_url, published_at, updated_at
			  FROM blog_posts
			  ORDER BY published_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.BlogPost
	for rows.Next() {
		var p models.BlogPost
		var imageURL sql.NullString
		var updatedAt sql.NullTime
		if err = rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.AuthorUID,
			&p.Tags, &imageURL, &p.PublishedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if imageURL.Valid {
			p.ImageURL = &imageURL.String
		}
		if updatedAt.Valid {
			p.UpdatedAt = &updatedAt.Time
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
