package paymentprovider

// CheckoutSessionRequest — параметры создания сессии оплаты подписки.
type CheckoutSessionRequest struct {
	CustomerID string            // Идентификатор покупателя у провайдера
	PriceID    string            // Идентификатор цены плана
	SuccessURL string            // Куда вернуть пользователя после оплаты
	CancelURL  string            // Куда вернуть пользователя при отмене
	Metadata   map[string]string // Метаданные, возвращаемые в вебхуках
}

// CheckoutSession — созданная сессия оплаты.
type CheckoutSession struct {
	ID  string `json:"id"`  // Идентификатор сессии
	URL string `json:"url"` // Ссылка на страницу оплаты
}

// Customer — покупатель у платёжного провайдера.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
