package watermilltransport_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	watermilltransport "github.com/arkade-os/xreserve/internal/infrastructure/transport/watermill"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTransport(t *testing.T) {
	pubsub := watermilltransport.NewGoChannel(watermilltransport.NewLogger())
	transport := watermilltransport.NewTransport(pubsub.Publisher, "")
	t.Cleanup(func() {
		//nolint:errcheck
		transport.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubsub.Subscriber.Subscribe(ctx, watermilltransport.OutboundTopic)
	require.NoError(t, err)

	t.Run("enqueue", func(t *testing.T) {
		dest := domain.SiblingChain(2000)
		msg := ports.OutboundMessage{
			Id:          uuid.NewString(),
			Destination: dest,
			Version:     domain.V2,
			Payload:     []byte{0x02, 0x04, 0x0a},
		}
		err := transport.Enqueue(ctx, msg)
		require.NoError(t, err)

		select {
		case wm := <-messages:
			wm.Ack()
			require.Equal(t, msg.Id, wm.UUID)

			var got struct {
				Id          string
				Destination string
				Version     domain.Version
				Payload     []byte
			}
			err := json.Unmarshal(wm.Payload, &got)
			require.NoError(t, err)

			destKey, err := dest.Key()
			require.NoError(t, err)
			require.Equal(t, destKey, got.Destination)
			require.Equal(t, destKey, wm.Metadata.Get("destination"))
			require.Equal(t, msg.Id, got.Id)
			require.Equal(t, domain.V2, got.Version)
			require.Equal(t, msg.Payload, got.Payload)
		case <-ctx.Done():
			t.Fatal("timed out waiting for outbound message")
		}
	})

	t.Run("invalid destination", func(t *testing.T) {
		deep := domain.Location{Parents: 1}
		for range domain.MaxInteriorDepth + 1 {
			deep.Interior = append(deep.Interior, domain.Parachain(1))
		}
		err := transport.Enqueue(ctx, ports.OutboundMessage{
			Id:          uuid.NewString(),
			Destination: deep,
			Version:     domain.V3,
		})
		require.Error(t, err)
	})
}

func TestInbox(t *testing.T) {
	pubsub := watermilltransport.NewGoChannel(watermilltransport.NewLogger())
	inbox := watermilltransport.NewInbox(pubsub.Publisher, pubsub.Subscriber, "")
	t.Cleanup(func() {
		//nolint:errcheck
		inbox.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	origin := domain.SiblingChain(1000)
	sent := []ports.InboundMessage{
		{Id: uuid.NewString(), Origin: origin, Payload: []byte{0x03, 0x00}},
		{Id: uuid.NewString(), Origin: domain.ParentLocation(), Payload: []byte{0x03, 0x04}},
	}
	for _, msg := range sent {
		err := inbox.Deliver(ctx, msg)
		require.NoError(t, err)
	}

	received := make(chan ports.InboundMessage, len(sent))
	done := make(chan error, 1)
	go func() {
		done <- inbox.Consume(ctx, func(_ context.Context, msg ports.InboundMessage) error {
			received <- msg
			if len(received) == len(sent) {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for inbound messages")
	}
	close(received)

	got := make([]ports.InboundMessage, 0, len(sent))
	for msg := range received {
		got = append(got, msg)
	}
	require.Len(t, got, len(sent))
	for i, msg := range got {
		require.Equal(t, sent[i].Id, msg.Id)
		require.Equal(t, sent[i].Payload, msg.Payload)
		require.Equal(t, sent[i].Origin.String(), msg.Origin.String())
	}
}
