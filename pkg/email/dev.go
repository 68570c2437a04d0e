package email

import (
	"context"
	"log/slog"
)

// DevSender logs outbound email instead of sending it, for development and
// simulation deployments where Postmark credentials are absent.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a log-only Sender.
func NewDevSender(log *slog.Logger) *DevSender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{log: log}
}

func (s *DevSender) SendEmail(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "email (dev sender, not delivered)",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
	)
	return nil
}
