package mailer

import "context"

// Mail is one outbound message.
type Mail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Transport sends a single mail and reports success or failure. The dispatch
// engine records the outcome per recipient; it never retries.
type Transport interface {
	Send(ctx context.Context, mail Mail) error
}
