// Package webhook переводит асинхронные уведомления платёжного провайдера
// в переходы журнала подписок, устойчиво к повторным и внеочередным доставкам.
package webhook

// Event — разобранное тело вебхук-события платёжного провайдера.
type Event struct {
	ID      string `json:"id"`      // Глобально уникальный идентификатор события
	Type    string `json:"type"`    // Тип события жизненного цикла
	Created int64  `json:"created"` // Unix-время события, момент вступления перехода в силу
	Data    struct {
		Object Object `json:"object"`
	} `json:"data"`
}

// Object — вложенный объект события: подписка или счёт.
type Object struct {
	ID           string            `json:"id"`           // Идентификатор подписки или счёта
	Status       string            `json:"status"`       // Статус объекта у провайдера
	Subscription string            `json:"subscription"` // Ссылка на подписку (для событий счёта)
	Metadata     map[string]string `json:"metadata"`     // Прикладные метаданные (user_uid)
	Items        struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// Поддерживаемые типы событий жизненного цикла подписки.
const (
	SubscriptionCreated  = "customer.subscription.created"
	SubscriptionUpdated  = "customer.subscription.updated"
	SubscriptionDeleted  = "customer.subscription.deleted"
	InvoicePaymentFailed = "invoice.payment_failed"
)

// externalRef возвращает идентификатор подписки, к которой относится событие.
func (e *Event) externalRef() string {
	if e.Data.Object.Subscription != "" {
		return e.Data.Object.Subscription
	}
	return e.Data.Object.ID
}

// priceID возвращает идентификатор цены первой позиции подписки.
func (e *Event) priceID() string {
	items := e.Data.Object.Items.Data
	if len(items) == 0 {
		return ""
	}
	return items[0].Price.ID
}
