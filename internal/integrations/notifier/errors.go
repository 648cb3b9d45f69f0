package notifier

import "errors"

var (
	// ErrNotConfigured возвращается, когда у отправителя нет клиента
	ErrNotConfigured = errors.New("notifier: sender not configured")

	// ErrSendFailed возвращается при ошибке провайдера
	ErrSendFailed = errors.New("notifier: send failed")
)
