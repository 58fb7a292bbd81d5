package watermilltransport

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Outbox reads back what was enqueued through a postgres pubsub.
type Outbox struct {
	db    *sql.DB
	topic string
}

func NewOutbox(db *sql.DB, topic string) *Outbox {
	if topic == "" {
		topic = OutboundTopic
	}
	return &Outbox{db, topic}
}

// Messages returns the messages enqueued for dest, oldest first.
// Watermill table name is (watermill_<topic>) and the payload column is
// JSON, so the destination can be filtered in the query.
func (o *Outbox) Messages(
	ctx context.Context, dest domain.Location,
) ([]ports.OutboundMessage, error) {
	if o.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	key, err := dest.Key()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT uuid, payload FROM watermill_%s WHERE payload->>'Destination' = $1 ORDER BY "offset" ASC;`,
		o.topic,
	)

	rows, err := o.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to query messages for topic %s with destination %s: %w", o.topic, dest, err,
		)
	}
	// nolint
	defer rows.Close()

	messages := make([]ports.OutboundMessage, 0)
	for rows.Next() {
		var uuid string
		var payload []byte
		if err := rows.Scan(&uuid, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan message payload: %w", err)
		}
		msg, err := fromOutboundMessage(message.NewMessage(uuid, payload))
		if err != nil {
			log.WithError(err).Warnf("failed to deserialize message: %s", string(payload))
			continue
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(
			"error iterating messages for topic %s with destination %s: %w", o.topic, dest, err,
		)
	}
	return messages, nil
}
