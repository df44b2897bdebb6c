// Package webhookreceive реализует HTTP-приёмник вебхуков платёжного провайдера.
//
// Маршрут открыт: подлинность события подтверждает подпись в заголовке
// Stripe-Signature, а не сессия пользователя. Тело читается целиком до
// разбора JSON, потому что подпись считается по сырым байтам.
package webhookreceive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slogantech/intelliweb/internal/http/response"
	"github.com/slogantech/intelliweb/internal/lib/sl"
	"github.com/slogantech/intelliweb/internal/models"
)

// Провайдер шлёт компактные события, лимит защищает от мусорных тел.
const maxBodySize = 1 << 20

// Service описывает интерфейс согласования событий провайдера с журналом.
type Service interface {
	Process(ctx context.Context, body []byte, signatureHeader string) error
}

// Handler обрабатывает HTTP-запросы вебхуков.
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
// @Summary Приём вебхука платёжного провайдера
// @Description Проверяет подпись события и применяет переход состояния подписки.
// Повторные и устаревшие события подтверждаются без изменения журнала.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param Stripe-Signature header string true "Подпись события"
// @Success 200 {object} map[string]any "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Недействительная подпись или повреждённое событие"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно, провайдер повторит доставку"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhookreceive"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	err = h.service.Process(r.Context(), body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthenticatedEvent):
			log.Warn("webhook signature rejected")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid signature"))
		case errors.Is(err, models.ErrMalformedEvent):
			log.Warn("malformed webhook event", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("malformed event"))
		case errors.Is(err, models.ErrStorageUnavailable):
			log.Error("webhook processing deferred", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("temporarily unavailable, retry"))
		default:
			log.Error("webhook processing failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{"received": true}))
}
