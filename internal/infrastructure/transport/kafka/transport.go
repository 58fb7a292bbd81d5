package kafkatransport

import (
	"context"
	"fmt"
	"strconv"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	log "github.com/sirupsen/logrus"
)

const (
	OutboundTopic = "xreserve.outbound"
	InboundTopic  = "xreserve.inbound"

	destinationHeader = "destination"
	originHeader      = "origin"
	versionHeader     = "version"

	flushTimeoutMs = 5000
)

type transport struct {
	producer *kafka.Producer
	topic    string
}

// NewTransport hands outbound programs to a kafka producer. Enqueue returns
// once the message sits in the producer's local queue; delivery reports are
// only logged.
func NewTransport(brokers, topic string) (ports.Transport, error) {
	if topic == "" {
		topic = OutboundTopic
	}
	producer, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	go logDeliveryReports(producer)

	return &transport{producer, topic}, nil
}

func (t *transport) Enqueue(_ context.Context, msg ports.OutboundMessage) error {
	dest, err := msg.Destination.Key()
	if err != nil {
		return fmt.Errorf("invalid destination: %w", err)
	}
	if err := t.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &t.topic, Partition: kafka.PartitionAny},
		Key:            []byte(msg.Id),
		Value:          msg.Payload,
		Headers: []kafka.Header{
			{Key: destinationHeader, Value: []byte(dest)},
			{Key: versionHeader, Value: []byte(strconv.Itoa(int(msg.Version)))},
		},
	}, nil); err != nil {
		return fmt.Errorf("failed to produce message %s: %w", msg.Id, err)
	}
	return nil
}

func (t *transport) Close() error {
	if left := t.producer.Flush(flushTimeoutMs); left > 0 {
		log.Warnf("closing kafka producer with %d undelivered messages", left)
	}
	t.producer.Close()
	return nil
}

func logDeliveryReports(producer *kafka.Producer) {
	for ev := range producer.Events() {
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				log.WithError(e.TopicPartition.Error).
					WithField("id", string(e.Key)).
					Warn("failed to deliver message")
				continue
			}
			log.WithField("id", string(e.Key)).Debug("delivered message")
		case kafka.Error:
			log.WithError(e).Warn("kafka producer error")
		}
	}
}

func header(headers []kafka.Header, key string) (string, bool) {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value), true
		}
	}
	return "", false
}

func originOf(msg *kafka.Message) (domain.Location, error) {
	key, ok := header(msg.Headers, originHeader)
	if !ok {
		return domain.Location{}, fmt.Errorf("missing %s header", originHeader)
	}
	return domain.LocationFromKey(key)
}
