// Package models определяет сигнальные ошибки доменного уровня.
// Сервисы оборачивают их через fmt.Errorf("%s: %w", op, err),
// а HTTP-слой распознаёт через errors.Is и переводит в статусы ответов.
package models

import "errors"

var (
	// ErrDuplicateIdentity — имя пользователя или email уже заняты.
	ErrDuplicateIdentity = errors.New("identity already registered")

	// ErrWeakCredential — пароль не проходит минимальную политику стойкости.
	ErrWeakCredential = errors.New("credential does not meet strength policy")

	// ErrInvalidCredential — неизвестный пользователь или неверный пароль.
	// Единая ошибка для обоих случаев, чтобы не допускать перечисления пользователей.
	ErrInvalidCredential = errors.New("invalid credentials")

	// ErrExpiredToken — срок действия токена истёк.
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidSignature — подпись токена не прошла проверку.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrMalformedToken — токен не разбирается или claims некорректны.
	ErrMalformedToken = errors.New("malformed token")

	// ErrUnauthenticated — запрос без валидного токена.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden — роли или уровня подписки недостаточно для операции.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticatedEvent — подпись вебхука не прошла проверку.
	ErrUnauthenticatedEvent = errors.New("webhook event signature invalid")

	// ErrMalformedEvent — тело вебхука не разбирается.
	ErrMalformedEvent = errors.New("malformed webhook event")

	// ErrStaleTransition — переход старше текущей активной записи журнала,
	// применять его нельзя (доставка вне очереди).
	ErrStaleTransition = errors.New("stale subscription transition")

	// ErrStorageUnavailable — временная ошибка хранилища, операцию можно повторить.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound — запрошенная сущность не найдена.
	ErrNotFound = errors.New("not found")
)
