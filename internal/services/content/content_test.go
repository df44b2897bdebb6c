package content_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slogantech/intelliweb/internal/models"
	"github.com/slogantech/intelliweb/internal/services/content"
)

type ContentRepoMock struct {
	mock.Mock
}

func (m *ContentRepoMock) CreateBlogPost(ctx context.Context, post models.BlogPost) (int64, error) {
	args := m.Called(ctx, post)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ContentRepoMock) UpdateBlogPost(ctx context.Context, id int64, title, content, tags string) error {
	args := m.Called(ctx, id, title, content, tags)
	return args.Error(0)
}

func (m *ContentRepoMock) DeleteBlogPost(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ContentRepoMock) GetBlogPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}

func (m *ContentRepoMock) ListBlogPosts(ctx context.Context, limit, offset int) ([]*models.BlogPost, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BlogPost), args.Error(1)
}

func (m *ContentRepoMock) ListProducts(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *ContentRepoMock) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *ContentRepoMock) CreateContactMessage(ctx context.Context, msg models.ContactMessage) (int64, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(int64), args.Error(1)
}

// Кеш в памяти поверх JSON, повторяет контракт ListCache.
type memoryCache struct {
	data map[string][]byte
	err  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, result any) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func newContentService(repo *ContentRepoMock, cache *memoryCache) *content.ContentService {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return content.NewContentService(repo, cache, log)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Go 1.24 Released!", "go-1-24-released"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER Case Title", "upper-case-title"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, content.Slugify(tt.title))
	}
}

func TestContentService_CreateBlogPost(t *testing.T) {
	repo := new(ContentRepoMock)
	svc := newContentService(repo, newMemoryCache())

	repo.On("CreateBlogPost", mock.Anything, mock.MatchedBy(func(p models.BlogPost) bool {
		return p.Title == "Hello World" && p.Slug == "hello-world" && p.AuthorUID == "uid-1"
	})).Return(int64(7), nil).Once()

	id, slug, err := svc.CreateBlogPost(context.Background(), "Hello World", "body", "go,web", "uid-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "hello-world", slug)
	repo.AssertExpectations(t)
}

func TestContentService_ListProducts_UsesCache(t *testing.T) {
	repo := new(ContentRepoMock)
	cache := newMemoryCache()
	svc := newContentService(repo, cache)

	products := []*models.Product{
		{ID: 1, Name: "Widget", RequiredTier: models.TierNone},
		{ID: 2, Name: "Gadget", RequiredTier: models.TierPremium},
	}
	repo.On("ListProducts", mock.Anything).Return(products, nil).Once()

	// Первый вызов читает базу и наполняет кеш, второй обслуживается из кеша.
	first, err := svc.ListProducts(context.Background())
	assert.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := svc.ListProducts(context.Background())
	assert.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Equal(t, first[0].Name, second[0].Name)

	repo.AssertNumberOfCalls(t, "ListProducts", 1)
}

func TestContentService_ListProducts_CacheFailureNotFatal(t *testing.T) {
	repo := new(ContentRepoMock)
	cache := newMemoryCache()
	cache.err = errors.New("redis down")
	svc := newContentService(repo, cache)

	products := []*models.Product{{ID: 1, Name: "Widget"}}
	repo.On("ListProducts", mock.Anything).Return(products, nil).Once()

	got, err := svc.ListProducts(context.Background())
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	repo.AssertExpectations(t)
}

func TestContentService_GetBlogPost_NotFound(t *testing.T) {
	repo := new(ContentRepoMock)
	svc := newContentService(repo, newMemoryCache())

	repo.On("GetBlogPostBySlug", mock.Anything, "ghost").Return(nil, models.ErrNotFound).Once()

	_, err := svc.GetBlogPost(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
	repo.AssertExpectations(t)
}
