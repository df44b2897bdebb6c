// Package middlewarectx содержит HTTP middleware для проверки токена сессии,
// роли и уровня подписки пользователя.
//
// JWTMiddleware проверяет наличие и валидность JWT в заголовке Authorization
// и в случае успеха добавляет claims в контекст запроса для дальнейшего
// использования в обработчиках. В случае ошибки возвращает HTTP 401.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/slogantech/intelliweb/internal/http/response"
	"github.com/slogantech/intelliweb/internal/lib/jwt"
	"github.com/slogantech/intelliweb/internal/lib/sl"
	"github.com/slogantech/intelliweb/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// ClaimsKey — ключ для claims токена в контексте.
	ClaimsKey Key = "claims"
)

// Guard описывает интерфейс сервиса проверки прав.
type Guard interface {
	// Authenticate извлекает и валидирует токен запроса.
	Authenticate(r *http.Request) (*jwt.CustomClaims, error)
	// RequireRole проверяет достаточность роли.
	RequireRole(claims *jwt.CustomClaims, required models.Role) error
	// RequireTier проверяет уровень подписки по живому состоянию журнала.
	RequireTier(ctx context.Context, claims *jwt.CustomClaims, minimumTier models.Tier) error
}

// ClaimsFromContext возвращает claims, добавленные JWTMiddleware.
func ClaimsFromContext(ctx context.Context) (*jwt.CustomClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*jwt.CustomClaims)
	return claims, ok
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет claims в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(guard Guard, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			claims, err := guard.Authenticate(r)
			if err != nil {
				log.Error("authentication failed", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid token"))
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
