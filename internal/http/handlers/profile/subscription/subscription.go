// Package subscription реализует HTTP-обработчик просмотра текущей подписки.
// Состояние читается из журнала подписок, а не из утверждений токена.
package subscription

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slogantech/intelliweb/internal/http/middlewarectx"
	"github.com/slogantech/intelliweb/internal/http/response"
	"github.com/slogantech/intelliweb/internal/lib/sl"
	"github.com/slogantech/intelliweb/internal/models"
)

// UserService возвращает учётную запись по имени пользователя.
type UserService interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// LedgerService читает состояние подписки из журнала.
type LedgerService interface {
	CurrentRecord(ctx context.Context, userUID string) (*models.SubscriptionRecord, error)
	History(ctx context.Context, userUID string) ([]*models.SubscriptionRecord, error)
}

// RecordView — представление записи подписки в ответе.
type RecordView struct {
	Tier      string     `json:"tier"`
	Status    string     `json:"status"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Handler обрабатывает HTTP-запросы просмотра подписки.
type Handler struct {
	log    *slog.Logger
	users  UserService
	ledger LedgerService
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users UserService, ledger LedgerService) *Handler {
	return &Handler{
		log:    log,
		users:  users,
		ledger: ledger,
	}
}

// ServeHTTP godoc
// @Summary Текущая подписка пользователя
// @Description Возвращает действующую запись подписки и историю переходов.
// Без действующей подписки уровень none и статус inactive.
// @Tags Profile
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Состояние подписки"
// @Failure 401 {object} response.ErrorResponse "Нет или недействителен токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /profile/subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.subscription"

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

	user, err := h.users.GetByUsername(r.Context(), claims.Username)
	if err != nil {
		log.Error("failed to load user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	current, err := h.ledger.CurrentRecord(r.Context(), user.UUID)
	if err != nil {
		log.Error("failed to read current record", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	records, err := h.ledger.History(r.Context(), user.UUID)
	if err != nil {
		log.Error("failed to read history", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	tier := models.TierNone
	status := models.StatusInactive
	var currentView *RecordView
	if current.Active() {
		tier = current.Tier
		status = current.Status
		currentView = &RecordView{
			Tier:      string(current.Tier),
			Status:    string(current.Status),
			StartDate: current.StartDate,
		}
	}

	history := make([]RecordView, 0, len(records))
	for _, rec := range records {
		history = append(history, RecordView{
			Tier:      string(rec.Tier),
			Status:    string(rec.Status),
			StartDate: rec.StartDate,
			EndDate:   rec.EndDate,
		})
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tier":    tier,
		"status":  status,
		"current": currentView,
		"history": history,
	}))
}
