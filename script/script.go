package script

import (
	"fmt"
	"strings"

	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/wire"
)

// Script is a compiled boolean predicate attached to an account or an
// asset. It is looked up from chain state and never mutated.
type Script struct {
	Code []byte
}

// New wraps compiled predicate code.
func New(code []byte) *Script {
	return &Script{Code: code}
}

// Text returns a human-readable disassembly, used in authorization error
// diagnostics.
func (s *Script) Text() string {
	var parts []string
	for pc := 0; pc < len(s.Code); {
		op := s.Code[pc]
		pc++
		if op == OpPush64 {
			if pc+8 > len(s.Code) {
				parts = append(parts, "PUSH <truncated>")
				break
			}
			val := int64(0)
			for i := 0; i < 8; i++ {
				val |= int64(s.Code[pc+i]) << (8 * i)
			}
			pc += 8
			parts = append(parts, fmt.Sprintf("PUSH %d", val))
			continue
		}
		parts = append(parts, opcodeName(op))
	}
	return strings.Join(parts, " ")
}

// Env is the evaluation environment a predicate runs against: the entity
// under authorization and the chain context. It is immutable for the
// duration of a run, which makes evaluation deterministic.
type Env struct {
	Height    uint64
	Entity    wire.Signable
	Fee       int64
	Timestamp int64
}

// NewTxEnv builds an evaluation environment for a transaction.
func NewTxEnv(height uint64, tx wire.Transaction) *Env {
	return &Env{
		Height:    height,
		Entity:    tx,
		Fee:       tx.GetFee(),
		Timestamp: tx.GetTimestamp(),
	}
}

// NewOrderEnv builds an evaluation environment for an order. The order's
// matcher fee plays the fee role.
func NewOrderEnv(height uint64, order *wire.Order) *Env {
	return &Env{
		Height:    height,
		Entity:    order,
		Fee:       order.MatcherFee,
		Timestamp: order.Timestamp,
	}
}

// Bindings returns the environment's bound variables as strings, for error
// diagnostics.
func (e *Env) Bindings() map[string]string {
	sender := crypto.PublicKey{}
	proofCount := 0
	if e.Entity != nil {
		sender = e.Entity.GetSenderKey()
		proofCount = len(e.Entity.GetProofs())
	}
	return map[string]string{
		"height":     fmt.Sprintf("%d", e.Height),
		"sender":     sender.String(),
		"fee":        fmt.Sprintf("%d", e.Fee),
		"timestamp":  fmt.Sprintf("%d", e.Timestamp),
		"proofCount": fmt.Sprintf("%d", proofCount),
	}
}
