package fee

import "errors"

var (
	ErrNegativeBasePrice    = errors.New("base price must not be negative")
	ErrPercentageOutOfRange = errors.New("platform fee percentage must be between 0 and 100")
)

// Split carves the platform fee out of the base price. The fee is rounded
// half-up and the organizer keeps the remainder, so the two parts always sum
// exactly to the base price.
func Split(basePriceCents int64, platformFeePercentage int) (platformFeeCents, organizerFeeCents int64, err error) {
	if basePriceCents < 0 {
		return 0, 0, ErrNegativeBasePrice
	}
	if platformFeePercentage < 0 || platformFeePercentage > 100 {
		return 0, 0, ErrPercentageOutOfRange
	}

	platformFeeCents = (basePriceCents*int64(platformFeePercentage) + 50) / 100
	organizerFeeCents = basePriceCents - platformFeeCents
	return platformFeeCents, organizerFeeCents, nil
}
