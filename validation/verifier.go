package validation

import (
	"fmt"

	"github.com/lunchact/Waves/crypto"
	"github.com/lunchact/Waves/script"
	"github.com/lunchact/Waves/state"
	"github.com/lunchact/Waves/wire"
)

// Verifier decides whether a transaction or order is authorized: by raw
// signature, by the sender account's script predicate, or, for exchange
// transactions, by the three-way matcher-and-both-orders rule. It only
// reads chain state.
type Verifier struct {
	reader state.Reader
	scheme byte
}

// NewVerifier builds a verifier over the given chain-state reader for the
// network identified by scheme.
func NewVerifier(reader state.Reader, scheme byte) *Verifier {
	return &Verifier{reader: reader, scheme: scheme}
}

// VerifyTransaction decides authorization of tx at the given height. A nil
// return means authorized; any error is terminal for the transaction.
func (v *Verifier) VerifyTransaction(height uint64, tx wire.Transaction) error {
	switch concrete := tx.(type) {
	case *wire.GenesisTx:
		// Genesis issuance carries no proofs; it is only producible
		// during chain bootstrap.
		return nil
	case *wire.ExchangeTx:
		if err := v.verifyExchange(height, concrete); err != nil {
			return err
		}
	default:
		if err := v.verifyEntity(height, tx, script.NewTxEnv(height, tx)); err != nil {
			return err
		}
	}
	return v.verifyAssetScript(height, tx)
}

// VerifyOrder decides authorization of an order at the given height,
// against the order's own sender.
func (v *Verifier) VerifyOrder(height uint64, order *wire.Order) error {
	return v.verifyEntity(height, order, script.NewOrderEnv(height, order))
}

// verifyExchange applies the three-way rule: the matcher's own
// authorization and both orders' authorizations must all succeed. The
// first failure aborts; the order of evaluation (matcher, seller, buyer)
// is fixed so a failing exchange always reproduces the same error.
func (v *Verifier) verifyExchange(height uint64, tx *wire.ExchangeTx) error {
	if err := v.verifyEntity(height, tx, script.NewTxEnv(height, tx)); err != nil {
		return err
	}
	if err := v.VerifyOrder(height, tx.SellOrder); err != nil {
		return err
	}
	return v.VerifyOrder(height, tx.BuyOrder)
}

// verifyEntity runs the per-entity decision procedure: account script if
// one is attached, otherwise the cached or freshly-checked single
// signature.
func (v *Verifier) verifyEntity(height uint64, entity wire.Signable, env *script.Env) error {
	senderAddr := crypto.NewAddressFromPublicKey(v.scheme, entity.GetSenderKey())
	accountScript, err := v.reader.AccountScript(senderAddr)
	if err != nil {
		return &GenericError{Message: fmt.Sprintf("failed to look up account script: %s", err)}
	}
	if accountScript != nil {
		return v.runScript(accountScript, env, false)
	}

	if entity.SignatureVerified() {
		return nil
	}

	proofs := entity.GetProofs()
	if len(proofs) != 1 {
		// Only scripted accounts may carry anything but a single proof,
		// and that permission is exercised by the script branch above.
		return &GenericError{Message: fmt.Sprintf(
			"entities of non-scripted accounts must carry exactly 1 proof, got %d", len(proofs))}
	}
	if !crypto.VerifySignature(entity.GetSenderKey(), proofs[0], entity.CanonicalBytes()) {
		return &GenericError{Message: "proof is not a valid signature of the sender over the canonical bytes"}
	}
	entity.MarkSignatureVerified()
	return nil
}

// verifyAssetScript applies the secondary token-script check for
// asset-moving transaction kinds. Transactions with no asset reference are
// untouched.
func (v *Verifier) verifyAssetScript(height uint64, tx wire.Transaction) error {
	asset, ok := tx.AssetRef()
	if !ok {
		return nil
	}
	description, err := v.reader.AssetDescription(asset)
	if err != nil {
		return &GenericError{Message: fmt.Sprintf("failed to look up asset %s: %s", asset, err)}
	}
	if description == nil || description.Script == nil {
		return nil
	}
	return v.runScript(description.Script, script.NewTxEnv(height, tx), true)
}

// runScript evaluates a predicate and maps every possible outcome onto the
// error taxonomy. A panic during evaluation is recovered and converted to
// a ScriptExecutionError; it never escapes as a process-level fault.
func (v *Verifier) runScript(scr *script.Script, env *script.Env, isTokenScript bool) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &ScriptExecutionError{
				Message:       fmt.Sprintf("predicate evaluation panicked: %v", recovered),
				ScriptText:    scr.Text(),
				Bindings:      env.Bindings(),
				IsTokenScript: isTokenScript,
			}
		}
	}()

	allowed, runErr := script.Run(scr, env)
	if runErr != nil {
		return &ScriptExecutionError{
			Message:       runErr.Error(),
			ScriptText:    scr.Text(),
			Bindings:      env.Bindings(),
			IsTokenScript: isTokenScript,
		}
	}
	if !allowed {
		return &NotAllowedByScriptError{
			ScriptText:    scr.Text(),
			Bindings:      env.Bindings(),
			IsTokenScript: isTokenScript,
		}
	}
	return nil
}
