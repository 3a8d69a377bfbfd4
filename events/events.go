package events

import (
	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/wire"
)

// OrderEvent is implemented by the closed set of order lifecycle events.
// New variants must be added to the dispatch switch in Loop.
type OrderEvent interface {
	OrderID() crypto.Hash
}

// OrderAdded signals that an order was seen for the first time.
type OrderAdded struct {
	ID     crypto.Hash
	Side   wire.OrderSide
	Amount int64
	Price  int64
}

// OrderID returns the ID of the added order.
func (e *OrderAdded) OrderID() crypto.Hash {
	return e.ID
}

// OrderExecuted signals a fill against an order. An order that trades in
// several blocks produces one event per fill.
type OrderExecuted struct {
	ID crypto.Hash

	Side wire.OrderSide

	// Amount is the asset amount executed by this fill, not the running
	// total.
	Amount int64

	// Fee is the matcher fee charged for this fill.
	Fee int64

	Price int64
}

// OrderID returns the ID of the executed order.
func (e *OrderExecuted) OrderID() crypto.Hash {
	return e.ID
}

// OrderCanceled signals that an order was withdrawn before filling
// completely.
type OrderCanceled struct {
	ID crypto.Hash

	// Unmatched is the amount that was still open when the order was
	// canceled.
	Unmatched int64
}

// OrderID returns the ID of the canceled order.
func (e *OrderCanceled) OrderID() crypto.Hash {
	return e.ID
}

// Sink receives order events. Publish must not block for long; the block
// diff engine calls it synchronously after a block is accepted.
type Sink interface {
	Publish(event OrderEvent)
}
