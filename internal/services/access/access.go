// Package access реализует проверку прав на каждый запрос: извлечение
// и валидацию токена сессии, проверку роли и проверку уровня подписки.
//
// Проверка уровня всегда выполняется по живому состоянию журнала подписок,
// а не по данным токена: подписка меняется чаще, чем живёт токен,
// и её изменения должны действовать без повторного входа.
package access

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/slogantech/intelliweb/internal/lib/jwt"
	"github.com/slogantech/intelliweb/internal/models"
)

// TokenParser описывает проверку токена сессии.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// LedgerReader описывает чтение текущей записи журнала подписок.
type LedgerReader interface {
	CurrentRecord(ctx context.Context, userUID string) (*models.SubscriptionRecord, error)
}

// SubjectResolver сопоставляет username из claims с UID пользователя.
type SubjectResolver interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Guard выполняет проверки без побочных эффектов: каждая операция только читает.
type Guard struct {
	tokens   TokenParser
	ledger   LedgerReader
	subjects SubjectResolver
}

// New создаёт Guard.
func New(tokens TokenParser, ledger LedgerReader, subjects SubjectResolver) *Guard {
	return &Guard{
		tokens:   tokens,
		ledger:   ledger,
		subjects: subjects,
	}
}

// Authenticate извлекает токен из заголовка Authorization и валидирует его.
// Отсутствующий или невалидный токен даёт models.ErrUnauthenticated.
func (g *Guard) Authenticate(r *http.Request) (*jwt.CustomClaims, error) {
	const op = "access.Authenticate"
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := g.tokens.ParseToken(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrUnauthenticated, err)
	}
	return claims, nil
}

// RequireRole проверяет, что роль из claims удовлетворяет требуемой.
func (g *Guard) RequireRole(claims *jwt.CustomClaims, required models.Role) error {
	const op = "access.RequireRole"
	if claims == nil || !claims.Role.Meets(required) {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	return nil
}

// RequireTier проверяет, что подписка субъекта активна и её уровень
// не ниже минимального. Отсутствие записи, неактивный статус или
// недостаточный уровень дают models.ErrForbidden.
func (g *Guard) RequireTier(ctx context.Context, claims *jwt.CustomClaims, minimumTier models.Tier) error {
	const op = "access.RequireTier"
	if claims == nil {
		return fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	user, err := g.subjects.GetByUsername(ctx, claims.Username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rec, err := g.ledger.CurrentRecord(ctx, user.UUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !rec.Active() {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	if !rec.Tier.AtLeast(minimumTier) {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	return nil
}
