// Package create реализует административный HTTP-обработчик создания записи блога.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/slogantech/intelliweb/internal/http/middlewarectx"
	"github.com/slogantech/intelliweb/internal/http/response"
	"github.com/slogantech/intelliweb/internal/lib/sl"
	"github.com/slogantech/intelliweb/internal/models"
)

// Request — входные данные новой записи блога.
type Request struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Tags    string `json:"tags" validate:"max=200"`
}

// UserService возвращает учётную запись по имени пользователя.
type UserService interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service описывает интерфейс бизнес-логики блога.
type Service interface {
	CreateBlogPost(ctx context.Context, title, content, tags, authorUID string) (int64, string, error)
}

// Handler обрабатывает HTTP-запросы создания записи.
type Handler struct {
	log      *slog.Logger
	users    UserService
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users UserService, service Service) *Handler {
	return &Handler{
		log:      log,
		users:    users,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создание записи блога
// @Description Создаёт запись блога со slug из заголовка. Доступно только администратору.
// @Tags Blog
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Содержимое записи"
// @Success 201 {object} map[string]any "Запись создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /admin/blog [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.blog.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	claims, ok := middlewarectx.ClaimsFromContext(r.Context())
	if !ok {
		log.Error("claims missing from context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid token"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	author, err := h.users.GetByUsername(r.Context(), claims.Username)
	if err != nil {
		log.Error("failed to load author", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	id, slug, err := h.service.CreateBlogPost(r.Context(), req.Title, req.Content, req.Tags, author.UUID)
	if err != nil {
		log.Error("failed to create blog post", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("blog post created", slog.Int64("id", id), slog.String("slug", slug))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":   id,
		"slug": slug,
	}))
}
