package middlewarectx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slogantech/intelliweb/internal/http/response"
	"github.com/slogantech/intelliweb/internal/lib/sl"
	"github.com/slogantech/intelliweb/internal/models"
)

// RequireTierMiddleware пропускает запрос только при активной подписке
// уровня не ниже minimumTier. Проверка идёт по живому состоянию журнала,
// а не по токену. Отказ отдаёт общий сигнал "нужно повышение подписки",
// не раскрывая внутренности журнала.
func RequireTierMiddleware(guard Guard, log *slog.Logger, minimumTier models.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireTierMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				log.Error("claims missing from context")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid token"))
				return
			}
			if err := guard.RequireTier(r.Context(), claims, minimumTier); err != nil {
				if errors.Is(err, models.ErrForbidden) {
					log.Info("tier check failed",
						slog.String("username", claims.Username),
						slog.String("minimum_tier", string(minimumTier)))
					w.WriteHeader(http.StatusForbidden)
					render.JSON(w, r, response.Error("subscription upgrade required"))
					return
				}
				log.Error("tier check error", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
