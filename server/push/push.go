package push

import "context"

// Payload is the notification handed to the delivery channel for a single
// recipient. Data carries enough structure for the receiving client to
// deep-link into its own emergency screen.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Link  string            `json:"link,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Channel delivers one payload to one device token.
type Channel interface {
	Send(ctx context.Context, token string, payload Payload) error
}

// Source is the platform side of token lifecycle: it produces the local
// device token & emits refresh events when the platform rotates it.
type Source interface {
	LocalToken(ctx context.Context) (string, error)
	OnRefresh(fn func(token string)) Unsubscribe
}

// Unsubscribe cancels a refresh subscription. The handle is owned by the
// process-lifetime root, never by an individual request.
type Unsubscribe func()
