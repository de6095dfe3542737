package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityevents/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := &sesMailer{client: client, fromAddress: "events@example.com", fromName: "Community Events", logger: testLogger()}

	require.NoError(t, m.Send(context.Background(), "ada@example.com", "Hello", "<p>hi</p>", ""))

	in := client.input
	require.NotNil(t, in)
	assert.Equal(t, "Community Events <events@example.com>", aws.ToString(in.Source))
	assert.Equal(t, []string{"ada@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Hello", aws.ToString(in.Message.Subject.Data))
	require.NotNil(t, in.Message.Body.Html)
	assert.Equal(t, "<p>hi</p>", aws.ToString(in.Message.Body.Html.Data))
	assert.Nil(t, in.Message.Body.Text)
}

func TestSESMailer_SendError(t *testing.T) {
	m := &sesMailer{client: &fakeSES{err: errors.New("throttled")}, fromAddress: "events@example.com", logger: testLogger()}
	err := m.Send(context.Background(), "ada@example.com", "Hello", "", "hi")
	assert.ErrorContains(t, err, "throttled")
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), "a@b.c", "s", "", ""))

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)

	_, err = NewMailer(MailerConfig{Provider: "ses"}, testLogger())
	assert.Error(t, err)

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "events@example.com", SES: SESConfig{Region: "eu-west-2"}}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}

func TestTemplateRenderer_RegistrationConfirmed(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	subject, html, text, err := r.Render("registration_confirmed", &domain.RegistrationConfirmationEmailData{
		Email:     "ada@example.com",
		Name:      "Ada",
		EventName: "Go <Meetup>",
		Date:      "2025-06-12",
		StartTime: "10:00",
		EndTime:   "14:00",
		Location:  "Hall",
	})
	require.NoError(t, err)
	assert.Equal(t, "You're registered for Go <Meetup>", subject)
	assert.Contains(t, html, "Go &lt;Meetup&gt;")
	assert.Contains(t, html, "Where: Hall")
	assert.Contains(t, text, "Hi Ada,")
	assert.Contains(t, text, "When: 2025-06-12, 10:00 - 14:00")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)
	_, _, _, err = r.Render("welcome", nil)
	assert.Error(t, err)
}
