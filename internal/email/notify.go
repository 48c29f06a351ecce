package email

import (
	"context"

	"salescrm_backend/internal/events"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
)

// Directory resolves recipient addresses for notification emails.
type Directory interface {
	GetEmailByID(ctx context.Context, id uuid.UUID) (string, error)
}

// TransferNotifier emails the previous owner when one of their leads is
// transferred. Delivery failures are logged, never propagated: the
// transfer itself has already committed.
type TransferNotifier struct {
	sender    Sender
	directory Directory
	log       *logger.Logger
}

func NewTransferNotifier(sender Sender, directory Directory, log *logger.Logger) *TransferNotifier {
	return &TransferNotifier{sender: sender, directory: directory, log: log}
}

// Subscribe registers the notifier on the event bus. A nil sender means
// email is disabled and nothing is registered.
func (n *TransferNotifier) Subscribe(bus events.Bus) {
	if n.sender == nil {
		return
	}

	bus.Subscribe(events.ClientTransferred{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.ClientTransferred)
		if !ok {
			return nil
		}
		if e.PreviousOwnerID == nil {
			// Unowned leads have nobody to notify.
			return nil
		}

		toEmail, err := n.directory.GetEmailByID(ctx, *e.PreviousOwnerID)
		if err != nil {
			n.log.Error("transfer notice recipient lookup failed", "error", err, "userId", *e.PreviousOwnerID)
			return nil
		}

		if err := n.sender.SendTransferNotice(ctx, toEmail, TransferNotice{
			NewOwnerName: e.NewOwnerName,
			ClientName:   e.ClientName,
		}); err != nil {
			n.log.Error("transfer notice delivery failed", "error", err, "clientId", e.ClientID)
		}
		return nil
	}))
}
