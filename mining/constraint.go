package mining

import (
	"github.com/lunchact/Waves/wire"
)

// Constraint is the shrinking resource budget consulted while folding
// transactions into a block diff. It is a pure value type: WithTransaction
// returns a new constraint and never mutates the receiver. A constraint is
// created per block-validation call and consumed, never reused.
type Constraint struct {
	remaining int64
	unlimited bool
}

// NewConstraint returns a constraint with the given complexity budget.
func NewConstraint(budget int64) Constraint {
	return Constraint{remaining: budget}
}

// UnlimitedConstraint returns a constraint that never overflows, for
// contexts like historical replay where no budget applies.
func UnlimitedConstraint() Constraint {
	return Constraint{unlimited: true}
}

// Remaining returns the budget left. Meaningless for an unlimited
// constraint.
func (c Constraint) Remaining() int64 {
	return c.remaining
}

// IsUnlimited reports whether this constraint ever overflows.
func (c Constraint) IsUnlimited() bool {
	return c.unlimited
}

// WithTransaction returns the constraint left after accepting tx, and
// whether accepting it would exceed the budget. On overflow the returned
// constraint is the receiver unchanged; the engine treats overflow as
// fatal to the whole block rather than truncating, since truncation would
// change on-chain transaction ordering.
func (c Constraint) WithTransaction(tx wire.Transaction) (Constraint, bool) {
	if c.unlimited {
		return c, false
	}
	cost := TransactionComplexity(tx)
	if cost > c.remaining {
		return c, true
	}
	return Constraint{remaining: c.remaining - cost}, false
}

// TransactionComplexity estimates the validation cost of a transaction.
// The estimate is size-driven with a surcharge per embedded order, so an
// exchange costs more than a payment of equal length.
func TransactionComplexity(tx wire.Transaction) int64 {
	cost := int64(len(tx.CanonicalBytes()))
	if exchange, ok := tx.(*wire.ExchangeTx); ok {
		cost += orderComplexity(exchange.BuyOrder) + orderComplexity(exchange.SellOrder)
	}
	return cost
}

func orderComplexity(order *wire.Order) int64 {
	return int64(len(order.CanonicalBytes()))
}
