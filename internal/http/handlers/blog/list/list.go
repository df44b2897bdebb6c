// Package list реализует HTTP-обработчик постраничного списка записей блога.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slogantech/intelliweb/internal/http/response"
	"github.com/slogantech/intelliweb/internal/lib/sl"
	"github.com/slogantech/intelliweb/internal/models"
)

const defaultLimit = 20
const maxLimit = 100

// Service описывает интерфейс бизнес-логики блога.
type Service interface {
	ListBlogPosts(ctx context.Context, limit, offset int) ([]*models.BlogPost, error)
}

// Handler обрабатывает HTTP-запросы списка записей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список записей блога
// @Description Возвращает страницу записей блога, отсортированных по дате публикации.
// @Tags Blog
// @Produce  json
// @Param limit query int false "Размер страницы, по умолчанию 20"
// @Param offset query int false "Смещение от начала"
// @Success 200 {object} map[string]any "Страница записей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /blog [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.blog.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxLimit {
			limit = v
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	posts, err := h.service.ListBlogPosts(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list blog posts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
	}))
}
