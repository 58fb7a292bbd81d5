package watermilltransport

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
)

const (
	destinationKey = "destination"
	originKey      = "origin"
)

// envelope is the JSON body of every watermill message. Locations travel as
// their canonical keys so that SQL backends can filter on them.
type envelope struct {
	Id          string
	Destination string         `json:",omitempty"`
	Origin      string         `json:",omitempty"`
	Version     domain.Version `json:",omitempty"`
	Payload     []byte
}

func toOutboundMessage(msg ports.OutboundMessage) (*message.Message, error) {
	dest, err := msg.Destination.Key()
	if err != nil {
		return nil, fmt.Errorf("invalid destination: %w", err)
	}
	body, err := json.Marshal(envelope{
		Id:          msg.Id,
		Destination: dest,
		Version:     msg.Version,
		Payload:     msg.Payload,
	})
	if err != nil {
		return nil, err
	}
	wm := message.NewMessage(messageUUID(msg.Id), body)
	wm.Metadata.Set(destinationKey, dest)
	return wm, nil
}

func fromOutboundMessage(wm *message.Message) (ports.OutboundMessage, error) {
	var env envelope
	if err := json.Unmarshal(wm.Payload, &env); err != nil {
		return ports.OutboundMessage{}, fmt.Errorf("malformed outbound message %s: %w", wm.UUID, err)
	}
	dest, err := domain.LocationFromKey(env.Destination)
	if err != nil {
		return ports.OutboundMessage{}, fmt.Errorf(
			"malformed destination in message %s: %w", wm.UUID, err,
		)
	}
	return ports.OutboundMessage{
		Id:          env.Id,
		Destination: dest,
		Version:     env.Version,
		Payload:     env.Payload,
	}, nil
}

func toInboundMessage(msg ports.InboundMessage) (*message.Message, error) {
	origin, err := msg.Origin.Key()
	if err != nil {
		return nil, fmt.Errorf("invalid origin: %w", err)
	}
	body, err := json.Marshal(envelope{
		Id:      msg.Id,
		Origin:  origin,
		Payload: msg.Payload,
	})
	if err != nil {
		return nil, err
	}
	wm := message.NewMessage(messageUUID(msg.Id), body)
	wm.Metadata.Set(originKey, origin)
	return wm, nil
}

func fromInboundMessage(wm *message.Message) (ports.InboundMessage, error) {
	var env envelope
	if err := json.Unmarshal(wm.Payload, &env); err != nil {
		return ports.InboundMessage{}, fmt.Errorf("malformed inbound message %s: %w", wm.UUID, err)
	}
	origin, err := domain.LocationFromKey(env.Origin)
	if err != nil {
		return ports.InboundMessage{}, fmt.Errorf(
			"malformed origin in message %s: %w", wm.UUID, err,
		)
	}
	return ports.InboundMessage{
		Id:      env.Id,
		Origin:  origin,
		Payload: env.Payload,
	}, nil
}

func messageUUID(id string) string {
	if id == "" {
		return watermill.NewUUID()
	}
	return id
}
