package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// Message is one outgoing email with both HTML and plain-text bodies.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, to string, msg Message) error
}

var signInHTML = template.Must(template.New("sign-in").Parse(
	`<p>Open the link below to sign in and see your workouts. It expires in {{.Minutes}} minutes.</p>` +
		`<p><a href="{{.Link}}">Sign in to your workout log</a></p>` +
		`<p>If you did not ask for this, you can ignore this email.</p>`,
))

// SignIn builds the magic-link email. link is the full verify URL.
func SignIn(link string, ttl time.Duration) Message {
	minutes := int(ttl.Minutes())

	var html bytes.Buffer
	_ = signInHTML.Execute(&html, struct {
		Link    string
		Minutes int
	}{link, minutes})

	return Message{
		Subject: "Sign in to your workout log",
		HTML:    html.String(),
		Text:    fmt.Sprintf("Sign in to see your workouts (expires in %d minutes):\n%s\n", minutes, link),
	}
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to string, msg Message) error {
	s.logger.InfoContext(ctx, "email not delivered (local dev)", "to", to, "subject", msg.Subject, "text", msg.Text)
	return nil
}

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to string, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local or when no API key is set,
// ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" || apiKey == "" {
		return &LogSender{logger: logger.With("component", "email")}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
