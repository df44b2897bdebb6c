// Package password реализует функции для безопасного хеширования и проверки паролей,
// а также минимальную политику стойкости пароля при регистрации.
//
// GetHash создает bcrypt-хеш пароля для безопасного хранения.
// CompareHash сравнивает исходный bcrypt-хеш с введённым паролем, проверяя их соответствие.
package password

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/slogantech/intelliweb/internal/models"
)

// MinLength — минимальная допустимая длина пароля.
const MinLength = 8

// denylist — небольшой список заведомо слабых паролей.
// Сравнение выполняется без учёта регистра.
var denylist = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"12345678":   {},
	"123456789":  {},
	"qwerty123":  {},
	"letmein123": {},
	"admin1234":  {},
	"iloveyou1":  {},
}

// Hasher хеширует пароли с настраиваемым фактором стоимости bcrypt.
type Hasher struct {
	cost int
}

// NewHasher создаёт Hasher. Стоимость ниже bcrypt.MinCost заменяется
// на bcrypt.DefaultCost, чтобы нельзя было случайно ослабить хеширование.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// ValidatePolicy проверяет пароль на соответствие минимальной политике стойкости:
// длина не меньше MinLength и отсутствие в списке заведомо слабых паролей.
func ValidatePolicy(password string) error {
	const op = "password.ValidatePolicy"
	if len(password) < MinLength {
		return fmt.Errorf("%s: %w", op, models.ErrWeakCredential)
	}
	if _, ok := denylist[strings.ToLower(password)]; ok {
		return fmt.Errorf("%s: %w", op, models.ErrWeakCredential)
	}
	return nil
}

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш.
//
// Используется для безопасного хранения паролей в базе данных.
func (h *Hasher) GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
// Сравнение внутри bcrypt выполняется за константное время.
//
// Возвращает nil, если пароль соответствует хэшу, иначе — ошибку.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
