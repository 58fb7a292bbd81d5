package kafkatransport

import (
	"context"
	"fmt"

	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	log "github.com/sirupsen/logrus"
)

const (
	consumerGroup = "xreserved"
	pollTimeoutMs = 500
)

type inbox struct {
	producer *kafka.Producer
	consumer *kafka.Consumer
	topic    string
}

func NewInbox(brokers, topic string) (ports.Inbox, error) {
	if topic == "" {
		topic = InboundTopic
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	go logDeliveryReports(producer)

	config := &kafka.ConfigMap{}
	for key, value := range map[string]kafka.ConfigValue{
		"bootstrap.servers":  brokers,
		"group.id":           consumerGroup,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": true,
	} {
		if err := config.SetKey(key, value); err != nil {
			producer.Close()
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	consumer, err := kafka.NewConsumer(config)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	return &inbox{producer, consumer, topic}, nil
}

func (i *inbox) Deliver(_ context.Context, msg ports.InboundMessage) error {
	origin, err := msg.Origin.Key()
	if err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}
	if err := i.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &i.topic, Partition: kafka.PartitionAny},
		Key:            []byte(msg.Id),
		Value:          msg.Payload,
		Headers:        []kafka.Header{{Key: originHeader, Value: []byte(origin)}},
	}, nil); err != nil {
		return fmt.Errorf("failed to deliver message %s: %w", msg.Id, err)
	}
	return nil
}

func (i *inbox) Consume(
	ctx context.Context, handler func(context.Context, ports.InboundMessage) error,
) error {
	if err := i.consumer.SubscribeTopics([]string{i.topic}, nil); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", i.topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		ev := i.consumer.Poll(pollTimeoutMs)
		switch e := ev.(type) {
		case nil:
			continue
		case *kafka.Message:
			origin, err := originOf(e)
			if err != nil {
				log.WithError(err).Warn("dropping inbound message")
				continue
			}
			msg := ports.InboundMessage{
				Id:      string(e.Key),
				Origin:  origin,
				Payload: e.Value,
			}
			if err := handler(ctx, msg); err != nil {
				log.WithError(err).WithField("id", msg.Id).Warn("failed to handle inbound message")
			}
		case kafka.Error:
			if e.IsFatal() {
				return fmt.Errorf("kafka consumer error: %w", e)
			}
			log.WithError(e).Warn("kafka consumer error")
		}
	}
}

func (i *inbox) Close() error {
	i.producer.Flush(flushTimeoutMs)
	i.producer.Close()
	return i.consumer.Close()
}
