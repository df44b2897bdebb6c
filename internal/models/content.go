// Package models содержит доменные структуры контентной части сайта:
// записи блога, товары каталога и сообщения обратной связи.
package models

import "time"

// BlogPost представляет запись блога.
type BlogPost struct {
	ID          int64      // Суррогатный ключ записи
	Title       string     // Заголовок
	Slug        string     // URL-идентификатор, уникальный
	Content     string     // Текст записи
	AuthorUID   string     // Идентификатор автора
	Tags        string     // Теги через запятую
	ImageURL    *string    // Ссылка на обложку, опционально
	PublishedAt time.Time  // Дата публикации
	UpdatedAt   *time.Time // Дата последнего изменения
}

// Product представляет товар каталога. RequiredTier задаёт минимальный
// уровень подписки для доступа к подробному описанию.
type Product struct {
	ID            int64   // Суррогатный ключ товара
	Name          string  // Название
	Category      string  // Категория
	Description   string  // Краткое описание
	Details       string  // Подробное описание, доступно по подписке
	Price         int64   // Цена в минорных единицах
	StripePriceID *string // Идентификатор цены у платёжного провайдера
	ImageURL      *string // Ссылка на изображение
	RequiredTier  Tier    // Минимальный уровень подписки для деталей
	IsFeatured    bool    // Флаг витрины
}

// ContactMessage представляет сообщение из формы обратной связи.
type ContactMessage struct {
	ID         int64     // Суррогатный ключ сообщения
	Name       string    // Имя отправителя
	Email      string    // Email отправителя
	Subject    string    // Тема
	Message    string    // Текст сообщения
	ReceivedAt time.Time // Момент получения
	IsRead     bool      // Прочитано ли администратором
}
