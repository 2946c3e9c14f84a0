package price

import (
	"math/big"
)

// FeePolicy adds the marketplace fee to a native amount.
type FeePolicy interface {
	ApplyFee(wei *big.Int) *big.Int
}

// DefaultFeeBasisPoints is the KnownOrigin primary-sale fee (2.5%).
const DefaultFeeBasisPoints = 250

const basisPointsScale = 10_000

// BasisPointsFee adds wei*bps/10000 (floored) on top of the listed amount.
type BasisPointsFee struct {
	BasisPoints int64
}

// NewBasisPointsFee creates a fee policy. Negative values are treated as zero.
func NewBasisPointsFee(bps int64) BasisPointsFee {
	return BasisPointsFee{BasisPoints: max(bps, 0)}
}

func (f BasisPointsFee) ApplyFee(wei *big.Int) *big.Int {
	fee := new(big.Int).Mul(wei, big.NewInt(f.BasisPoints))
	fee.Quo(fee, big.NewInt(basisPointsScale))
	return fee.Add(fee, wei)
}
