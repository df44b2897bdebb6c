// Package checkoutcreate реализует HTTP-обработчик создания сессии оплаты подписки.
package checkoutcreate

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
	"github.com/slogantech/intelliweb/internal/paymentprovider"
	"github.com/slogantech/intelliweb/internal/services/payment"
)

// Request — входные данные создания сессии оплаты.
type Request struct {
	PriceID string `json:"price_id" validate:"required"`
}

// UserService возвращает учётную запись по имени пользователя.
type UserService interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service описывает интерфейс бизнес-логики оплаты.
type Service interface {
	CreateCheckout(ctx context.Context, user *models.User, priceID string) (*paymentprovider.CheckoutSession, error)
}

// Handler обрабатывает HTTP-запросы создания сессии оплаты.
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
// @Summary Создание сессии оплаты
// @Description Создаёт у платёжного провайдера сессию оформления подписки
// на выбранный план и возвращает URL для перехода к оплате.
// @Tags Payments
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор цены плана"
// @Success 200 {object} map[string]any "Сессия создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неизвестный план"
// @Failure 401 {object} response.ErrorResponse "Нет или недействителен токен"
// @Failure 502 {object} response.ErrorResponse "Провайдер недоступен"
// @Router /payments/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkoutcreate"

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

	user, err := h.users.GetByUsername(r.Context(), claims.Username)
	if err != nil {
		log.Error("failed to load user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	session, err := h.service.CreateCheckout(r.Context(), user, req.PriceID)
	if err != nil {
		if errors.Is(err, payment.ErrUnknownPrice) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown subscription plan"))
			return
		}
		log.Error("checkout session creation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to create checkout session"))
		return
	}

	log.Info("checkout session created",
		slog.String("username", claims.Username),
		slog.String("session_id", session.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session_id":   session.ID,
		"checkout_url": session.URL,
	}))
}
