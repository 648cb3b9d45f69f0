package notifier

import "context"

// StubEmailSender только логирует письмо (режим симуляции без учетных данных)
type StubEmailSender struct {
	logger Logger
}

// NewStubEmailSender создает stub отправителя
func NewStubEmailSender(logger Logger) *StubEmailSender {
	return &StubEmailSender{logger: logger}
}

// Send пишет письмо в лог и считает отправку успешной
func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Info("StubEmailSender: would send to=%s subject=%q body=%q", msg.To, msg.Subject, msg.Body)
	return nil
}
