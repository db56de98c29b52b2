package notifications

import "context"

// Publisher routes user events through Redis when it is configured, so every
// instance's hub sees them, and straight into the local hub otherwise.
type Publisher struct {
	notifier *Notifier
	hub      *Hub
}

// NewPublisher creates a Publisher. Either argument may be nil.
func NewPublisher(n *Notifier, hub *Hub) *Publisher {
	return &Publisher{notifier: n, hub: hub}
}

// PublishUser delivers payload to every connection userID has open.
func (p *Publisher) PublishUser(ctx context.Context, userID uint, payload string) error {
	if p.notifier.Enabled() {
		return p.notifier.PublishUser(ctx, userID, payload)
	}
	if p.hub != nil {
		p.hub.Broadcast(userID, payload)
	}
	return nil
}
