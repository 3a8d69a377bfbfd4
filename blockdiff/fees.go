package blockdiff

// Once the NG feature activates, a block signer no longer collects the
// whole fee of every transaction they package. They collect 2/5 of the
// fees of their own block immediately and the remaining 3/5 when they
// sign the next block on top of it.
const (
	currentFeePartNumerator   = 2
	currentFeePartDenominator = 5
)

// CurrentBlockFeePart returns the portion of fee the block's own signer
// collects under NG. Division floors. Computed as quotient and remainder
// separately so fee*2 cannot overflow.
func CurrentBlockFeePart(fee int64) int64 {
	quotient := fee / currentFeePartDenominator
	remainder := fee % currentFeePartDenominator
	return quotient*currentFeePartNumerator +
		remainder*currentFeePartNumerator/currentFeePartDenominator
}

// PreviousBlockFeePart returns the portion carried to the signer of the
// next block. Defined as the exact complement of CurrentBlockFeePart so
// the two parts always sum to the original fee.
func PreviousBlockFeePart(fee int64) int64 {
	return fee - CurrentBlockFeePart(fee)
}
