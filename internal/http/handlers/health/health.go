// Package health реализует HTTP-обработчик проверки готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slogantech/intelliweb/internal/http/response"
	"github.com/slogantech/intelliweb/internal/lib/sl"
)

// Pinger описывает проверку доступности зависимости.
type Pinger interface {
	CheckDatabaseReady(ctx context.Context) error
}

// CachePinger описывает проверку доступности кеша.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// Handler обрабатывает HTTP-запросы проверки готовности.
type Handler struct {
	log     *slog.Logger
	storage Pinger
	cache   CachePinger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, storage Pinger, cache CachePinger) *Handler {
	return &Handler{
		log:     log,
		storage: storage,
		cache:   cache,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Description Проверяет доступность базы данных и кеша.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Сервис готов"
// @Failure 503 {object} response.ErrorResponse "Зависимости недоступны"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.storage.CheckDatabaseReady(r.Context()); err != nil {
		log.Error("database not ready", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database unavailable"))
		return
	}

	if err := h.cache.Ping(r.Context()); err != nil {
		log.Error("cache not ready", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("cache unavailable"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{"status": "ready"}))
}
