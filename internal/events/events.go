// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"salescrm_backend/platform/events"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Client Domain Events
// =============================================================================

// ClientCaptured is published when a brand-new client record is created.
type ClientCaptured struct {
	BaseEvent
	ClientID   uuid.UUID `json:"clientId"`
	ClientName string    `json:"clientName"`
	OwnerID    uuid.UUID `json:"ownerId"`
}

func (e ClientCaptured) EventName() string { return "clients.captured" }

// ClientTransferred is published when a stale client is reassigned to a new
// seller. The previous owner is notified by email via a subscriber.
type ClientTransferred struct {
	BaseEvent
	ClientID        uuid.UUID  `json:"clientId"`
	ClientName      string     `json:"clientName"`
	PreviousOwnerID *uuid.UUID `json:"previousOwnerId,omitempty"`
	NewOwnerID      uuid.UUID  `json:"newOwnerId"`
	NewOwnerName    string     `json:"newOwnerName"`
}

func (e ClientTransferred) EventName() string { return "clients.transferred" }

// SaleClosed is published when a client transitions to Closed and a Sale is
// recorded.
type SaleClosed struct {
	BaseEvent
	SaleID     uuid.UUID `json:"saleId"`
	ClientID   uuid.UUID `json:"clientId"`
	SellerID   uuid.UUID `json:"sellerId"`
	ValueCents int64     `json:"valueCents"`
}

func (e SaleClosed) EventName() string { return "clients.sale_closed" }

// SaleCancelled is published when a sale is deleted and the client reverts
// to Post-sale.
type SaleCancelled struct {
	BaseEvent
	SaleID   uuid.UUID `json:"saleId"`
	ClientID uuid.UUID `json:"clientId"`
	SellerID uuid.UUID `json:"sellerId"`
}

func (e SaleCancelled) EventName() string { return "clients.sale_cancelled" }
