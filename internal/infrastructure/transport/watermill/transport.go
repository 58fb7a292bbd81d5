package watermilltransport

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/arkade-os/xreserve/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const (
	OutboundTopic = "xreserve_outbound"
	InboundTopic  = "xreserve_inbound"
)

type transport struct {
	publisher message.Publisher
	topic     string
}

// NewTransport enqueues outbound programs on the given publisher. Delivery
// to the destination chain is up to whatever consumes the topic.
func NewTransport(publisher message.Publisher, topic string) ports.Transport {
	if topic == "" {
		topic = OutboundTopic
	}
	return &transport{publisher, topic}
}

func (t *transport) Enqueue(ctx context.Context, msg ports.OutboundMessage) error {
	wm, err := toOutboundMessage(msg)
	if err != nil {
		return err
	}
	wm.SetContext(ctx)
	if err := t.publisher.Publish(t.topic, wm); err != nil {
		return fmt.Errorf("failed to publish message %s: %w", msg.Id, err)
	}
	log.WithFields(log.Fields{
		"id":          msg.Id,
		"destination": msg.Destination.String(),
		"version":     msg.Version,
	}).Debug("enqueued outbound message")
	return nil
}

func (t *transport) Close() error {
	return t.publisher.Close()
}
