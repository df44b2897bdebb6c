// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и роль.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Role представляет роль пользователя в системе.
type Role string

const (
	// RoleUser — обычный пользователь.
	RoleUser Role = "user"
	// RoleAdmin — администратор.
	RoleAdmin Role = "admin"
)

// Valid сообщает, является ли значение одной из известных ролей.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Meets проверяет, достаточно ли роли r для требуемой роли required.
// Администратор удовлетворяет любому требованию, обычный пользователь — только своему.
func (r Role) Meets(required Role) bool {
	switch required {
	case RoleUser:
		return r == RoleUser || r == RoleAdmin
	case RoleAdmin:
		return r == RoleAdmin
	}
	return false
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID              string    // Уникальный идентификатор пользователя
	Email             string    // Электронная почта (уникальная)
	Username          string    // Имя пользователя (уникальное)
	FullName          string    // Полное имя для отображения
	PasswordHash      string    // Хэш пароля пользователя
	Role              Role      // Роль пользователя, admin или user
	ProfilePictureURL *string   // Ссылка на аватар, опционально
	StripeCustomerID  *string   // Идентификатор покупателя у платёжного провайдера
	CreatedAt         time.Time // Дата создания учётной записи
}
