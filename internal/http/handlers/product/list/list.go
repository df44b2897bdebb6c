// Package list реализует HTTP-обработчик каталога товаров.
// Список открыт всем и отдаётся без подробных описаний.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slogantech/intelliweb/internal/http/response"
	"github.com/slogantech/intelliweb/internal/lib/sl"
	"github.com/slogantech/intelliweb/internal/models"
)

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
}

// ProductView — краткое представление товара в списке, без поля Details.
type ProductView struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Price        int64   `json:"price"`
	ImageURL     *string `json:"image_url,omitempty"`
	RequiredTier string  `json:"required_tier"`
	IsFeatured   bool    `json:"is_featured"`
}

// Handler обрабатывает HTTP-запросы списка товаров.
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
// @Summary Каталог товаров
// @Description Возвращает список товаров без подробных описаний.
// Подробности доступны по подписке через отдельный маршрут.
// @Tags Products
// @Produce  json
// @Success 200 {object} map[string]any "Список товаров"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /products [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		log.Error("failed to list products", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{
			ID:           p.ID,
			Name:         p.Name,
			Category:     p.Category,
			Description:  p.Description,
			Price:        p.Price,
			ImageURL:     p.ImageURL,
			RequiredTier: string(p.RequiredTier),
			IsFeatured:   p.IsFeatured,
		})
	}

	render.JSON(w, r, response.OKWithData(map[string]any{"products": views}))
}
