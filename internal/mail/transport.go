package mail

import "context"

// Message is a fully rendered email ready for delivery.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers a single message. Implementations return a provider
// message id where the channel supplies one.
type Transport interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}
