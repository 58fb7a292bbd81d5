package ports

import (
	"context"

	"github.com/arkade-os/xreserve/internal/core/domain"
)

// OutboundMessage is a program already downgraded to the destination's
// version. Payload is the wire encoding of the versioned program.
type OutboundMessage struct {
	Id          string
	Destination domain.Location
	Version     domain.Version
	Payload     []byte
}

// Transport only guarantees local enqueueing, not delivery.
type Transport interface {
	Enqueue(ctx context.Context, msg OutboundMessage) error
	Close() error
}

// InboundMessage is a versioned program received from another chain.
type InboundMessage struct {
	Id      string
	Origin  domain.Location
	Payload []byte
}

type Inbox interface {
	Deliver(ctx context.Context, msg InboundMessage) error
	// Consume blocks handing every inbound message to handler until ctx is
	// done.
	Consume(ctx context.Context, handler func(context.Context, InboundMessage) error) error
	Close() error
}
