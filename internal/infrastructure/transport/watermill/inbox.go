package watermilltransport

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/arkade-os/xreserve/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type inbox struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	topic      string
}

func NewInbox(
	publisher message.Publisher, subscriber message.Subscriber, topic string,
) ports.Inbox {
	if topic == "" {
		topic = InboundTopic
	}
	return &inbox{publisher, subscriber, topic}
}

func (i *inbox) Deliver(ctx context.Context, msg ports.InboundMessage) error {
	wm, err := toInboundMessage(msg)
	if err != nil {
		return err
	}
	wm.SetContext(ctx)
	if err := i.publisher.Publish(i.topic, wm); err != nil {
		return fmt.Errorf("failed to deliver message %s: %w", msg.Id, err)
	}
	return nil
}

// Consume acks every message once handled. Handler failures are final:
// whatever the program could not deposit has already been trapped.
func (i *inbox) Consume(
	ctx context.Context, handler func(context.Context, ports.InboundMessage) error,
) error {
	messages, err := i.subscriber.Subscribe(ctx, i.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", i.topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case wm, ok := <-messages:
			if !ok {
				return nil
			}
			msg, err := fromInboundMessage(wm)
			if err != nil {
				log.WithError(err).Warn("dropping inbound message")
				wm.Ack()
				continue
			}
			if err := handler(ctx, msg); err != nil {
				log.WithError(err).WithField("id", msg.Id).Warn("failed to handle inbound message")
			}
			wm.Ack()
		}
	}
}

func (i *inbox) Close() error {
	if err := i.subscriber.Close(); err != nil {
		return err
	}
	return i.publisher.Close()
}
