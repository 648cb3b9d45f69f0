package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentAgent/pkg/logger"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestNotifier_Notify(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "Aura Aesthetics", "Downtown Studio", logger.NewNop())

	ok := n.Notify(context.Background(), "ana@example.com", "Ana", "2026-10-19", "10:00",
		map[string]string{"service": "Laser Precision Therapy"})

	require.True(t, ok)
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Confirmation: Laser Precision Therapy at Aura Aesthetics", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Ana,")
	assert.Contains(t, msg.Body, "Date: 2026-10-19")
	assert.Contains(t, msg.Body, "Time: 10:00")
	assert.Contains(t, msg.Body, "Location: Downtown Studio")
}

func TestNotifier_NoRecipient(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "Aura Aesthetics", "", logger.NewNop())

	assert.False(t, n.Notify(context.Background(), " ", "Ana", "2026-10-19", "10:00", nil))
	assert.Empty(t, sender.sent)
}

func TestNotifier_SendFailureIsFlag(t *testing.T) {
	n := NewNotifier(&recordingSender{err: errors.New("smtp down")}, "Aura Aesthetics", "", logger.NewNop())

	assert.False(t, n.Notify(context.Background(), "ana@example.com", "", "2026-10-19", "10:00", nil))
}

func TestBuildConfirmation_Defaults(t *testing.T) {
	msg := BuildConfirmation("Aura Aesthetics", "", "ana@example.com", "", "2026-10-19", "10:00", nil)

	assert.Equal(t, "Confirmation: Service at Aura Aesthetics", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Valued Client,")
	assert.NotContains(t, msg.Body, "Location:")
}

type fakeSendGrid struct {
	got    *mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.got = email
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status, Body: "body"}, nil
}

func TestSendGridSender_Send(t *testing.T) {
	client := &fakeSendGrid{status: 202}
	s := newSendGridSender(client, SendGridConfig{FromEmail: "desk@aura.test", FromName: "Aura"})

	err := s.Send(context.Background(), EmailMessage{To: "ana@example.com", ToName: "Ana", Subject: "Hi", Body: "text"})

	require.NoError(t, err)
	require.NotNil(t, client.got)
	assert.Equal(t, "Hi", client.got.Subject)
	assert.Equal(t, "desk@aura.test", client.got.From.Address)
}

func TestSendGridSender_Errors(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}))

	var nilSender *SendGridSender
	assert.ErrorIs(t, nilSender.Send(context.Background(), EmailMessage{}), ErrNotConfigured)

	s := newSendGridSender(&fakeSendGrid{status: 401}, SendGridConfig{})
	assert.ErrorIs(t, s.Send(context.Background(), EmailMessage{To: "a@b.c"}), ErrSendFailed)

	s = newSendGridSender(&fakeSendGrid{err: errors.New("dial")}, SendGridConfig{})
	assert.ErrorIs(t, s.Send(context.Background(), EmailMessage{To: "a@b.c"}), ErrSendFailed)
}

type fakeSES struct {
	got *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.got = in
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESSender_Send(t *testing.T) {
	client := &fakeSES{}
	s := newSESSender(client, SESConfig{FromEmail: "desk@aura.test", FromName: "Aura"})

	err := s.Send(context.Background(), EmailMessage{To: "ana@example.com", Subject: "Hi", Body: "text"})

	require.NoError(t, err)
	assert.Equal(t, "Aura <desk@aura.test>", *client.got.FromEmailAddress)
	assert.Equal(t, []string{"ana@example.com"}, client.got.Destination.ToAddresses)
	assert.Equal(t, "text", *client.got.Content.Simple.Body.Text.Data)
	assert.Nil(t, client.got.Content.Simple.Body.Html)

	s = newSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{})
	assert.ErrorIs(t, s.Send(context.Background(), EmailMessage{To: "a@b.c"}), ErrSendFailed)
	assert.Nil(t, NewSESSender(nil, SESConfig{}))
}

func TestStubEmailSender(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(logger.NewNop()).Send(context.Background(), EmailMessage{To: "a@b.c"}))
}
