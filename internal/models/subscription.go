// Package models содержит доменные структуры журнала подписок:
// уровни (tier), статусы и записи истории с окном действия.
// Записи неизменяемы: каждая смена состояния добавляет новую запись,
// а "текущая" вычисляется как последняя открытая запись со статусом active.
package models

import "time"

// Tier представляет уровень подписки с полным порядком
// none < basic < premium < ultimate.
type Tier string

const (
	// TierNone — отсутствие подписки.
	TierNone Tier = "none"
	// TierBasic — базовый уровень.
	TierBasic Tier = "basic"
	// TierPremium — расширенный уровень.
	TierPremium Tier = "premium"
	// TierUltimate — максимальный уровень.
	TierUltimate Tier = "ultimate"
)

var tierOrder = map[Tier]int{
	TierNone:     0,
	TierBasic:    1,
	TierPremium:  2,
	TierUltimate: 3,
}

// Valid сообщает, является ли значение одним из известных уровней.
func (t Tier) Valid() bool {
	_, ok := tierOrder[t]
	return ok
}

// AtLeast проверяет, что уровень t не ниже требуемого min.
// Неизвестный уровень никогда не проходит проверку.
func (t Tier) AtLeast(min Tier) bool {
	lvl, ok := tierOrder[t]
	if !ok {
		return false
	}
	required, ok := tierOrder[min]
	if !ok {
		return false
	}
	return lvl >= required
}

// SubscriptionStatus представляет статус записи подписки.
type SubscriptionStatus string

const (
	// StatusInactive — подписка не действует.
	StatusInactive SubscriptionStatus = "inactive"
	// StatusActive — подписка действует.
	StatusActive SubscriptionStatus = "active"
	// StatusPastDue — платёж просрочен, подписка под вопросом.
	StatusPastDue SubscriptionStatus = "past_due"
	// StatusCanceled — подписка отменена.
	StatusCanceled SubscriptionStatus = "canceled"
)

// Valid сообщает, является ли значение одним из известных статусов.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusInactive, StatusActive, StatusPastDue, StatusCanceled:
		return true
	}
	return false
}

// SubscriptionRecord представляет одну запись журнала подписок.
// EndDate равен nil, пока запись открыта; у пользователя в любой момент
// может быть открыта не более одной записи со статусом active.
type SubscriptionRecord struct {
	ID          int64              // Суррогатный ключ записи
	UserUID     string             // Идентификатор пользователя-владельца
	Tier        Tier               // Уровень подписки
	Status      SubscriptionStatus // Статус записи
	StartDate   time.Time          // Начало действия записи
	EndDate     *time.Time         // Конец действия, nil для открытой записи
	ExternalRef string             // Идентификатор подписки у платёжного провайдера
	CreatedAt   time.Time          // Момент добавления записи в журнал
}

// Active сообщает, является ли запись действующей.
func (r *SubscriptionRecord) Active() bool {
	return r != nil && r.Status == StatusActive && r.EndDate == nil
}

// SubscriptionTransition описывает переход состояния подписки,
// применяемый журналом. Пустой Tier означает "унаследовать уровень
// текущей активной записи" — он разрешается внутри транзакции,
// чтобы конкурирующие вебхуки не читали устаревший уровень.
type SubscriptionTransition struct {
	UserUID     string             // Пользователь, чья подписка меняется
	Tier        Tier               // Целевой уровень, "" — без изменения
	Status      SubscriptionStatus // Целевой статус
	ExternalRef string             // Идентификатор подписки у провайдера
	EffectiveAt time.Time          // Момент вступления перехода в силу
}
