package ledger_service

import (
	"math/bits"

	"github.com/varity-labs/varity-app-store/service/apperrors"
)

const (
	// PlatformFeeBps platform share of a purchase, in basis points
	PlatformFeeBps uint64 = 1000
	// BpsDenominator one whole in basis points
	BpsDenominator uint64 = 10000
)

// SplitPayment returns floor(price * 1000 / 10000) as the platform fee and the remainder as the
// developer share. The two always sum to price. The product is computed in 128 bits.
func SplitPayment(price uint64) (platformFee, developerShare uint64) {
	hi, lo := bits.Mul64(price, PlatformFeeBps)
	// hi < BpsDenominator always holds since PlatformFeeBps < BpsDenominator
	platformFee, _ = bits.Div64(hi, lo, BpsDenominator)
	return platformFee, price - platformFee
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, apperrors.ErrOverflow
	}
	return sum, nil
}
