package notifier

import "context"

// EmailSender отправка письма; реализации взаимозаменяемы (SendGrid, SES, stub)
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage письмо к отправке
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // текстовое тело
	HTML    string // опциональное HTML тело
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
