package gacha

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfOrder    = errors.New("pulls out of order")
	ErrInvalidRarity = errors.New("invalid rarity")
	ErrMissingItem   = errors.New("five star without item id")
)

// Validate checks the assumptions Compute makes about its input: pulls
// ordered by time then index, sane rarities, and an item id on every five
// star of a guarantee banner. It reports the first violation found.
func Validate(pulls []Pull, policy Policy) error {
	for i, p := range pulls {
		if p.Rarity < 1 || p.Rarity > 5 {
			return fmt.Errorf("pull %d (index %d): %w: %d", i, p.Index, ErrInvalidRarity, p.Rarity)
		}

		if policy.Guarantee && p.Rarity == 5 && p.ItemID == nil {
			return fmt.Errorf("pull %d (index %d): %w", i, p.Index, ErrMissingItem)
		}

		if i == 0 {
			continue
		}

		prev := pulls[i-1]
		if p.Timestamp.Before(prev.Timestamp) ||
			(p.Timestamp.Equal(prev.Timestamp) && p.Index <= prev.Index) {
			return fmt.Errorf("pull %d (index %d) after index %d: %w", i, p.Index, prev.Index, ErrOutOfOrder)
		}
	}

	return nil
}
