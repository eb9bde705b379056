package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned by Dispatch for a frame whose type has no
// registered handler.
var ErrUnknownType = errors.New("unknown message type")

// Handler processes the payload of one event type.
type Handler func(payload json.RawMessage) error

// Router dispatches inbound frames to registered handlers. One Router
// is built per connection, so handlers run in the order frames arrive
// on that connection.
type Router struct {
	handlers map[string]Handler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]Handler)}
}

// Register adds a handler for a specific event type.
func (r *Router) Register(msgType string, h Handler) {
	r.handlers[msgType] = h
}

// Dispatch parses a raw frame and routes it to the matching handler.
func (r *Router) Dispatch(raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}

	h, ok := r.handlers[env.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	return h(env.Payload)
}
