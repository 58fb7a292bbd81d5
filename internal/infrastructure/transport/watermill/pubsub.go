package watermilltransport

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	defaultBufferSize   = 256
	defaultPollInterval = time.Second
	consumerGroup       = "xreserved"
)

// PubSub pairs the publisher and subscriber sides of the same backend.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// NewGoChannel returns an in-process pubsub. Messages are lost on restart.
func NewGoChannel(logger watermill.LoggerAdapter) PubSub {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: defaultBufferSize,
		Persistent:          true,
	}, logger)
	return PubSub{Publisher: ch, Subscriber: ch}
}

// NewPostgres returns a pubsub backed by watermill's SQL tables, giving the
// daemon a durable outbox. One table is created per topic.
func NewPostgres(db *sql.DB, logger watermill.LoggerAdapter) (PubSub, error) {
	var beginner watermillsql.Beginner = db

	publisher, err := watermillsql.NewPublisher(beginner, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, logger)
	if err != nil {
		return PubSub{}, fmt.Errorf("failed to create sql publisher: %w", err)
	}

	subscriber, err := watermillsql.NewSubscriber(beginner, watermillsql.SubscriberConfig{
		ConsumerGroup:    consumerGroup,
		PollInterval:     defaultPollInterval,
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
	}, logger)
	if err != nil {
		//nolint:errcheck
		publisher.Close()
		return PubSub{}, fmt.Errorf("failed to create sql subscriber: %w", err)
	}

	return PubSub{Publisher: publisher, Subscriber: subscriber}, nil
}
