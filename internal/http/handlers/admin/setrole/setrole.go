// Package setrole реализует административный HTTP-обработчик смены роли пользователя.
// Маршрут закрыт middleware проверки роли администратора; сервис аутентификации
// дополнительно проверяет роль инициатора.
package setrole

import (
	"context"
	"encoding/json"
	"errors"
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

// Request — входные данные смены роли.
type Request struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Role     string `json:"role" validate:"required,oneof=user admin"`
}

// Service описывает интерфейс бизнес-логики смены роли.
type Service interface {
	SetRole(ctx context.Context, actingRole models.Role, targetUsername string, newRole models.Role) error
}

// Handler обрабатывает HTTP-запросы смены роли.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Смена роли пользователя
// @Description Меняет роль пользователя. Доступно только администратору.
// Уже выпущенные токены цели сохраняют прежнюю роль до истечения срока действия.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Пользователь и новая роль"
// @Success 200 {object} map[string]any "Роль обновлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /admin/users/role [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.setrole"

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

	err := h.service.SetRole(r.Context(), claims.Role, req.Username, models.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrForbidden):
			log.Info("role change forbidden", slog.String("acting", claims.Username))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		case errors.Is(err, models.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("role change failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	log.Info("role updated",
		slog.String("acting", claims.Username),
		slog.String("target", req.Username),
		slog.String("role", req.Role))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"username": req.Username,
		"role":     req.Role,
	}))
}
