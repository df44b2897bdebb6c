// Package content содержит логику бизнес-уровня контентной части сайта:
// записи блога с генерацией slug, каталог товаров с кешированием списка
// и приём сообщений обратной связи.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/slogantech/intelliweb/internal/lib/sl"
	"github.com/slogantech/intelliweb/internal/models"
)

const productsCacheKey = "products:list"
const productsCacheTTL = 5 * time.Minute

var slugPattern = regexp.MustCompile(`[\s\W-]+`)

// Slugify приводит заголовок к URL-идентификатору.
func Slugify(text string) string {
	text = strings.ToLower(text)
	text = slugPattern.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}

// ContentRepository описывает контракт хранилища контента.
type ContentRepository interface {
	CreateBlogPost(ctx context.Context, post models.BlogPost) (int64, error)
	UpdateBlogPost(ctx context.Context, id int64, title, content, tags string) error
	DeleteBlogPost(ctx context.Context, id int64) error
	GetBlogPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	ListBlogPosts(ctx context.Context, limit, offset int) ([]*models.BlogPost, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateContactMessage(ctx context.Context, msg models.ContactMessage) (int64, error)
}

// ListCache описывает кеш для списков, переживающих частые чтения.
type ListCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// ContentService — бизнес-логика блога, каталога и обратной связи.
type ContentService struct {
	repo  ContentRepository
	cache ListCache
	log   *slog.Logger
}

// NewContentService создаёт ContentService.
func NewContentService(repo ContentRepository, cache ListCache, log *slog.Logger) *ContentService {
	return &ContentService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// CreateBlogPost создаёт запись блога со slug, сгенерированным из заголовка.
func (s *ContentService) CreateBlogPost(ctx context.Context, title, content, tags, authorUID string) (int64, string, error) {
	const op = "content.CreateBlogPost"
	slug := Slugify(title)
	id, err := s.repo.CreateBlogPost(ctx, models.BlogPost{
		Title:     title,
		Slug:      slug,
		Content:   content,
		Tags:      tags,
		AuthorUID: authorUID,
	})
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}
	return id, slug, nil
}

// UpdateBlogPost обновляет запись блога.
func (s *ContentService) UpdateBlogPost(ctx context.Context, id int64, title, content, tags string) error {
	const op = "content.UpdateBlogPost"
	if err := s.repo.UpdateBlogPost(ctx, id, title, content, tags); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteBlogPost удаляет запись блога.
func (s *ContentService) DeleteBlogPost(ctx context.Context, id int64) error {
	const op = "content.DeleteBlogPost"
	if err := s.repo.DeleteBlogPost(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetBlogPost возвращает запись блога по slug.
func (s *ContentService) GetBlogPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	const op = "content.GetBlogPost"
	post, err := s.repo.GetBlogPostBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}

// ListBlogPosts возвращает страницу записей блога.
func (s *ContentService) ListBlogPosts(ctx context.Context, limit, offset int) ([]*models.BlogPost, error) {
	const op = "content.ListBlogPosts"
	posts, err := s.repo.ListBlogPosts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return posts, nil
}

// ListProducts возвращает каталог товаров, используя кеш.
// Ошибки кеша не фатальны: список читается из базы.
func (s *ContentService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "content.ListProducts"

	var cached []*models.Product
	found, err := s.cache.Get(ctx, productsCacheKey, &cached)
	if err != nil {
		s.log.Warn("products cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.Set(ctx, productsCacheKey, products, productsCacheTTL); err != nil {
		s.log.Warn("products cache write failed", sl.Err(err))
	}
	return products, nil
}

// GetProduct возвращает товар по ID.
func (s *ContentService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "content.GetProduct"
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

// SubmitContactMessage сохраняет сообщение обратной связи.
func (s *ContentService) SubmitContactMessage(ctx context.Context, name, email, subject, message string) (int64, error) {
	const op = "content.SubmitContactMessage"
	id, err := s.repo.CreateContactMessage(ctx, models.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
