// Package gacha computes luck and 50/50 statistics from a player's wish history.
package gacha

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category identifies a wish banner with its own pull history.
type Category string

const (
	Beginner   Category = "beginner"
	Standard   Category = "standard"
	Character  Category = "character"
	Weapon     Category = "weapon"
	Chronicled Category = "chronicled"
)

// Categories lists every banner category in a stable order.
var Categories = []Category{Beginner, Standard, Character, Weapon, Chronicled}

// ParseCategory converts a string into a known Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown banner category: %q", s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case Beginner, Standard, Character, Weapon, Chronicled:
		return true
	}
	return false
}

// Pull is a single historical wish.
type Pull struct {
	Index     int64
	Rarity    int
	ItemID    *int32 // character or weapon id, nil when unknown
	Timestamp time.Time
}

// Ratio is a quotient that stays undefined while its denominator is zero.
type Ratio struct {
	Num int
	Den int
}

// Float returns the quotient and whether it is defined.
func (r Ratio) Float() (float64, bool) {
	if r.Den == 0 {
		return 0, false
	}
	return float64(r.Num) / float64(r.Den), true
}

// Ptr returns the quotient, or nil when undefined.
func (r Ratio) Ptr() *float64 {
	v, ok := r.Float()
	if !ok {
		return nil
	}
	return &v
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Ptr())
}

// Stats is the result of walking one player's history for one banner.
type Stats struct {
	Pulls int   `json:"pulls"`
	Luck4 Ratio `json:"luck_4"`
	Luck5 Ratio `json:"luck_5"`

	// Guarantee is nil for banners without a 50/50 mechanic.
	Guarantee *GuaranteeStats `json:"guarantee,omitempty"`
}

// GuaranteeStats covers the 50/50 rolls of a guarantee banner.
// Five stars forced by a previous loss are not rolls and are not counted.
type GuaranteeStats struct {
	WinRate       Ratio `json:"win_rate"`
	MaxWinStreak  int   `json:"max_win_streak"`
	MaxLossStreak int   `json:"max_loss_streak"`
}
