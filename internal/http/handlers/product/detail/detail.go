// Package detail реализует HTTP-обработчик подробной карточки товара.
// Маршрут закрыт middleware проверки уровня подписки: подробное описание
// видят только пользователи с действующей подпиской нужного уровня.
package detail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slogantech/intelliweb/internal/http/response"
	"github.com/slogantech/intelliweb/internal/lib/sl"
	"github.com/slogantech/intelliweb/internal/models"
)

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// Handler обрабатывает HTTP-запросы карточки товара.
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
// @Summary Подробная карточка товара
// @Description Возвращает товар с подробным описанием. Требует действующей
// подписки уровня не ниже premium.
// @Tags Products
// @Security BearerAuth
// @Produce  json
// @Param id path int true "Идентификатор товара"
// @Success 200 {object} map[string]any "Карточка товара"
// @Failure 403 {object} response.ErrorResponse "Требуется подписка выше"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /products/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.detail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid product id"))
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("product not found"))
			return
		}
		log.Error("failed to read product", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{"product": product}))
}
