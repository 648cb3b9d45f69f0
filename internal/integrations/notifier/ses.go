package notifier

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesClient подмножество *sesv2.Client, которое нам нужно
type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig настройки AWS SES
type SESConfig struct {
	FromEmail string
	FromName  string
}

// SESSender отправляет письма через AWS SES
type SESSender struct {
	client    sesClient
	fromEmail string
	fromName  string
}

// NewSESSender создает отправителя; без клиента возвращает nil
func NewSESSender(client *sesv2.Client, cfg SESConfig) *SESSender {
	if client == nil {
		return nil
	}
	return newSESSender(client, cfg)
}

func newSESSender(client sesClient, cfg SESConfig) *SESSender {
	return &SESSender{client: client, fromEmail: cfg.FromEmail, fromName: cfg.FromName}
}

// Send отправляет письмо
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return ErrNotConfigured
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{},
			},
		},
	}

	if msg.Body != "" {
		input.Content.Simple.Body.Text = &types.Content{
			Data:    aws.String(msg.Body),
			Charset: aws.String("UTF-8"),
		}
	}
	if msg.HTML != "" {
		input.Content.Simple.Body.Html = &types.Content{
			Data:    aws.String(msg.HTML),
			Charset: aws.String("UTF-8"),
		}
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("%w: ses: %w", ErrSendFailed, err)
	}
	return nil
}
