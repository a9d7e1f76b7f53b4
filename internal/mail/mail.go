// Package mail sends the back office's outbound email through Resend. The
// notifier composes messages; this package only delivers them.
package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/gigdesk/gigdesk-api/pkg/backoff"
)

// Attachment is one file carried on a message.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Message is a fully composed outbound email.
type Message struct {
	To          []string
	Cc          []string
	Subject     string
	HTML        string
	ReplyTo     string
	Attachments []Attachment
}

// Sender delivers a message. Implementations retry transient failures
// internally; a returned error is final.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendSender is the production Sender backed by the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	policy backoff.Policy
	log    *zap.Logger
}

// NewResendSender constructs a sender. from is the fixed envelope sender,
// e.g. "GigDesk <booking@band.example>".
func NewResendSender(apiKey, from string, policy backoff.Policy, log *zap.Logger) *ResendSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		policy: policy,
		log:    log,
	}
}

// Send delivers the message, retrying with backoff until the policy is
// exhausted. Context cancellation is never retried.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("message has no recipients")
	}

	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Cc:      msg.Cc,
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	}
	for _, att := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    att.Filename,
			Content:     att.Content,
			ContentType: att.ContentType,
		})
	}

	err := s.policy.Retry(func() error {
		_, sendErr := s.client.Emails.SendWithContext(ctx, req)
		return sendErr
	}, func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.log.Info("email sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)))
	return nil
}
