package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultSendTimeout ограничение на одну отправку
const DefaultSendTimeout = 10 * time.Second

// Notifier отправляет подтверждение записи
// Ошибки доставки не пробрасываются: результат только флаг успеха
type Notifier struct {
	sender       EmailSender
	businessName string
	location     string
	timeout      time.Duration
	logger       Logger
}

// NewNotifier создает Notifier поверх любого EmailSender
func NewNotifier(sender EmailSender, businessName, location string, logger Logger) *Notifier {
	return &Notifier{
		sender:       sender,
		businessName: businessName,
		location:     location,
		timeout:      DefaultSendTimeout,
		logger:       logger,
	}
}

// Notify отправляет подтверждение на toAddress
// details: service, quality_score и прочие пары для тела письма
func (n *Notifier) Notify(ctx context.Context, toAddress, name, date, clock string, details map[string]string) bool {
	if strings.TrimSpace(toAddress) == "" {
		n.logger.Info("Notify: skipped, no recipient address")
		return false
	}

	msg := BuildConfirmation(n.businessName, n.location, toAddress, name, date, clock, details)

	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.sender.Send(sendCtx, msg); err != nil {
		n.logger.Error("Notify: failed to send confirmation to=%s: %v", toAddress, err)
		return false
	}

	n.logger.Info("Notify: confirmation sent to=%s subject=%q", toAddress, msg.Subject)
	return true
}

// BuildConfirmation собирает текст письма-подтверждения
func BuildConfirmation(businessName, location, to, name, date, clock string, details map[string]string) EmailMessage {
	service := details["service"]
	if service == "" {
		service = "Service"
	}
	if name == "" {
		name = "Valued Client"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	fmt.Fprintf(&b, "We are delighted to confirm your appointment at %s.\n\n", businessName)
	fmt.Fprintf(&b, "Service: %s\n", service)
	fmt.Fprintf(&b, "Date: %s\n", date)
	fmt.Fprintf(&b, "Time: %s\n", clock)
	if location != "" {
		fmt.Fprintf(&b, "\nLocation: %s\n", location)
	}
	b.WriteString("\nPlease arrive 5 minutes early. If you need to reschedule, simply ask our booking assistant.\n\n")
	fmt.Fprintf(&b, "Warm regards,\nThe %s Team\n", businessName)

	return EmailMessage{
		To:      to,
		ToName:  name,
		Subject: fmt.Sprintf("Confirmation: %s at %s", service, businessName),
		Body:    b.String(),
	}
}
