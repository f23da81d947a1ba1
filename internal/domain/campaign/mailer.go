package campaign

import (
	"context"

	"pulsecrm/pkg/logger"
)

// Message is one outbound email.
type Message struct {
	To        string
	ToName    string
	FromName  string
	FromEmail string
	Subject   string
	BodyHTML  string
}

// Mailer is the port to the external email-sending service. The platform
// never talks to the provider directly; deliveries go through this interface.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them.
// Used in development and tests.
type LogMailer struct{}

// Send implements Mailer.
func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Info(ctx, "mail sent (log mailer)",
		"to", msg.To,
		"subject", msg.Subject,
		"from", msg.FromEmail,
	)
	return nil
}
