package channels

import (
	"context"
	"fmt"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/models"
)

// Message is a rendered outbound message bound for a single recipient.
// To holds the channel-specific address: an email address, a LINE user ID,
// or a phone number.
type Message struct {
	Channel models.Channel
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered message over one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Registry maps channels to their configured senders. Channels without a
// registered sender are disabled.
type Registry struct {
	senders map[models.Channel]Sender
}

// NewRegistry creates an empty sender registry
func NewRegistry() *Registry {
	return &Registry{senders: make(map[models.Channel]Sender)}
}

// Register adds a sender for a channel, replacing any existing one
func (r *Registry) Register(channel models.Channel, sender Sender) {
	r.senders[channel] = sender
}

// Send dispatches a message through the sender registered for its channel
func (r *Registry) Send(ctx context.Context, msg Message) error {
	sender, ok := r.senders[msg.Channel]
	if !ok {
		return fmt.Errorf("no sender registered for channel %s", msg.Channel)
	}
	return sender.Send(ctx, msg)
}

// Enabled reports whether a sender is registered for the channel
func (r *Registry) Enabled(channel models.Channel) bool {
	_, ok := r.senders[channel]
	return ok
}
