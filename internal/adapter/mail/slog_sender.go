package mail

import (
	"context"

	"github.com/loayeid/shophub/internal/logging"
	"github.com/loayeid/shophub/internal/usecase"
)

// SlogSender logs outbound mail instead of delivering it. Stands in until an
// SMTP or provider-backed sender is wired; the call sites do not change.
type SlogSender struct {
	from string
}

func NewSlogSender(from string) *SlogSender { return &SlogSender{from: from} }

func (s *SlogSender) Send(ctx context.Context, to, subject, body string) error {
	logging.FromCtx(ctx).Info("mail sent",
		"from", s.from,
		"to", to,
		"subject", subject,
		"bytes", len(body),
	)
	return nil
}

var _ usecase.MailSender = (*SlogSender)(nil)
