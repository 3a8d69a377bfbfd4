package blockdiff

import (
	"github.com/pkg/errors"

	"github.com/lunchact/Waves/chainconfig"
	"github.com/lunchact/Waves/events"
	"github.com/lunchact/Waves/features"
	"github.com/lunchact/Waves/mining"
	"github.com/lunchact/Waves/state"
	"github.com/lunchact/Waves/statediff"
	"github.com/lunchact/Waves/txdiffer"
	"github.com/lunchact/Waves/validation"
	"github.com/lunchact/Waves/wire"
)

// Engine turns blocks into state diffs. It owns no state of its own: every
// call reads the pre-block chain state through the given reader and returns
// a diff the caller may commit or discard.
type Engine struct {
	params   *chainconfig.Params
	registry *KindRegistry
	sink     events.Sink
}

// NewEngine builds an engine for the given network. The registry decides
// which transaction kinds are admissible and when. sink may be nil, in
// which case no order events are emitted.
func NewEngine(params *chainconfig.Params, registry *KindRegistry, sink events.Sink) *Engine {
	return &Engine{
		params:   params,
		registry: registry,
		sink:     sink,
	}
}

// ApplyBlock computes the combined state diff of a block on top of the
// state the reader exposes. previousBlock is the block the new one builds
// on, nil when applying the first block.
//
// Processing is fail-fast: the first transaction that fails authorization,
// admissibility, the resource constraint or diff computation rejects the
// whole block, and no events are emitted. On success the returned
// constraint reflects the budget consumed by the block.
func (e *Engine) ApplyBlock(reader state.Reader, previousBlock *wire.Block,
	block *wire.Block, constraint mining.Constraint) (*statediff.Diff, mining.Constraint, error) {

	height, err := reader.Height()
	if err != nil {
		return nil, constraint, err
	}
	height++

	gate := features.New(e.params, reader)
	verifier := validation.NewVerifier(reader, e.params.AddressScheme)
	differ := txdiffer.New(reader, e.params.AddressScheme)

	blockDiff := statediff.New()
	for _, tx := range block.Transactions {
		if err := verifier.VerifyTransaction(height, tx); err != nil {
			return nil, constraint, ruleError(ErrTransactionUnauthorized, err)
		}
		if err := e.registry.checkAdmissible(gate, height, tx); err != nil {
			return nil, constraint, err
		}
		next, overflowed := constraint.WithTransaction(tx)
		if overflowed {
			return nil, constraint, ruleError(ErrConstraintOverflow,
				errors.Errorf("transaction %s exceeds the remaining block budget %d",
					tx.GetID(), constraint.Remaining()))
		}
		constraint = next

		txDiff, err := differ.CreateDiff(tx)
		if err != nil {
			return nil, constraint, ruleError(ErrInvalidTransactionDiff, err)
		}
		if err := blockDiff.Combine(txDiff); err != nil {
			return nil, constraint, ruleError(ErrInvalidTransactionDiff, err)
		}
	}

	if err := e.addSignerReward(gate, height, previousBlock, block, blockDiff); err != nil {
		return nil, constraint, err
	}

	e.emitOrderEvents(block)

	log.Debugf("Computed diff for block %s at height %d (%d transactions)",
		block.ID(), height, len(block.Transactions))
	return blockDiff, constraint, nil
}

// addSignerReward credits the block signer with transaction fees. Before
// the NG feature the signer collects the whole fees of their own block.
// From NG activation on, they collect 2/5 of their own block's fees plus
// the 3/5 remainder of the previous block's, unless the previous block
// predates NG, in which case the remainder is forfeited for good.
func (e *Engine) addSignerReward(gate *features.Gate, height uint64,
	previousBlock *wire.Block, block *wire.Block, blockDiff *statediff.Diff) error {

	ngActive, err := gate.IsActive(chainconfig.FeatureNG, height)
	if err != nil {
		return err
	}

	var reward int64
	if !ngActive {
		totalFees, err := block.TotalFees()
		if err != nil {
			return ruleError(ErrInvalidBlock, err)
		}
		reward = totalFees
	} else {
		current, _, err := blockFeeParts(block)
		if err != nil {
			return ruleError(ErrInvalidBlock, err)
		}
		reward = current

		if previousBlock != nil && height > 1 {
			previousNGActive, err := gate.IsActive(chainconfig.FeatureNG, height-1)
			if err != nil {
				return err
			}
			if previousNGActive {
				_, carried, err := blockFeeParts(previousBlock)
				if err != nil {
					return ruleError(ErrInvalidBlock, err)
				}
				reward += carried
			}
		}
	}

	if reward == 0 {
		return nil
	}
	signer := block.SignerAddress(e.params.AddressScheme)
	return blockDiff.AddBalance(signer, reward)
}

// blockFeeParts folds the per-transaction fee split over a block: the part
// the block's own signer collects and the part carried to the next block's
// signer. The split floors per transaction, not per block total.
func blockFeeParts(block *wire.Block) (current int64, carried int64, err error) {
	for _, tx := range block.Transactions {
		fee := tx.GetFee()
		if fee < 0 {
			return 0, 0, errors.Errorf("transaction %s has negative fee %d", tx.GetID(), fee)
		}
		currentPart := CurrentBlockFeePart(fee)
		if current > maxInt64-currentPart {
			return 0, 0, errors.New("block fee sum overflows")
		}
		current += currentPart
		carriedPart := PreviousBlockFeePart(fee)
		if carried > maxInt64-carriedPart {
			return 0, 0, errors.New("block fee sum overflows")
		}
		carried += carriedPart
	}
	return current, carried, nil
}

const maxInt64 = int64(^uint64(0) >> 1)

func (e *Engine) emitOrderEvents(block *wire.Block) {
	if e.sink == nil {
		return
	}
	for _, tx := range block.Transactions {
		exchange, ok := tx.(*wire.ExchangeTx)
		if !ok {
			continue
		}
		e.sink.Publish(&events.OrderExecuted{
			ID:     exchange.BuyOrder.GetID(),
			Side:   wire.SideBuy,
			Amount: exchange.Amount,
			Fee:    exchange.BuyMatcherFee,
			Price:  exchange.Price,
		})
		e.sink.Publish(&events.OrderExecuted{
			ID:     exchange.SellOrder.GetID(),
			Side:   wire.SideSell,
			Amount: exchange.Amount,
			Fee:    exchange.SellMatcherFee,
			Price:  exchange.Price,
		})
	}
}
