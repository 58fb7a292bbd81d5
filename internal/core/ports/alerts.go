package ports

import "context"

const (
	AssetsTrapped      Topic = "Assets Trapped"
	TransferRolledBack Topic = "Transfer Rolled Back"
)

type Topic string

type Alerts interface {
	Publish(ctx context.Context, topic Topic, message interface{}) error
}

type AssetsTrappedAlert struct {
	Hash   string
	Origin string
	Assets []string
	Count  uint32
}

type TransferRolledBackAlert struct {
	MessageId   string
	Account     string
	Destination string
	Currency    string
	Refunded    uint64
	Reason      string
}
