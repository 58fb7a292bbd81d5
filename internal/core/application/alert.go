package application

import (
	"context"
	"time"

	"github.com/arkade-os/xreserve/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const alertTimeout = 5 * time.Second

func (s *service) onTrapped(ctx context.Context, outcome *TrapOutcome) {
	if outcome == nil || outcome.Record == nil {
		return
	}
	s.metrics.trapped(ctx)

	record := *outcome.Record
	assets := make([]string, 0, len(record.Assets))
	for _, a := range record.Assets {
		assets = append(assets, a.String())
	}
	go s.publishAlert(ports.AssetsTrapped, ports.AssetsTrappedAlert{
		Hash:   record.Hash,
		Origin: record.Origin.String(),
		Assets: assets,
		Count:  record.Count,
	})
}

func (s *service) onRolledBack(
	msg ports.OutboundMessage, account, currency string, amount uint64, cause error,
) {
	go s.publishAlert(ports.TransferRolledBack, ports.TransferRolledBackAlert{
		MessageId:   msg.Id,
		Account:     account,
		Destination: msg.Destination.String(),
		Currency:    currency,
		Refunded:    amount,
		Reason:      cause.Error(),
	})
}

func (s *service) publishAlert(topic ports.Topic, message any) {
	if s.alerts == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
	defer cancel()

	if err := s.alerts.Publish(ctx, topic, message); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("failed to publish alert")
	}
}
