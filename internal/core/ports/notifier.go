package ports

import "context"

// TransferNotification is an incoming transfer message as delivered by the
// host, along with the contract that emitted it.
type TransferNotification struct {
	Contract string
	Payload  []byte
}

// Notifier streams incoming transfer notifications.
type Notifier interface {
	Start() (<-chan TransferNotification, error)
	Stop()
}

// TransferHandler consumes a notification.
type TransferHandler interface {
	OnIncomingTransfer(ctx context.Context, contract string, payload []byte) error
}
