package openrouter

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("openrouter client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("openrouter client: invalid response")

	// ErrUnauthorized возвращается при неверном API-ключе
	ErrUnauthorized = errors.New("openrouter client: unauthorized")

	// ErrRateLimited возвращается при превышении лимита запросов
	ErrRateLimited = errors.New("openrouter client: rate limited")
)
