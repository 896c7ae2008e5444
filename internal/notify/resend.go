package notify

import (
	"context"
	"fmt"

	resend "github.com/resend/resend-go/v2"
)

type ResendSender struct {
	from   string
	client *resend.Client
}

func NewResendSender(from, apiKey string) *ResendSender {
	return &ResendSender{
		from:   from,
		client: resend.NewClient(apiKey),
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("send via resend: %w", err)
	}
	return nil
}
