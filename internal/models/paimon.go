package models

import (
	"encoding/json"
	"fmt"

	"github.com/hashblen/stardb-api/internal/gacha"
)

// PaimonTimeLayout is the local time format of paimon.moe exports.
const PaimonTimeLayout = "2006-01-02 15:04:05"

// PaimonExport is the subset of a paimon.moe backup we import.
type PaimonExport struct {
	UID            FlexUID       `json:"wish-uid"`
	Beginners      *PaimonWishes `json:"wish-counter-beginners"`
	Standard       *PaimonWishes `json:"wish-counter-standard"`
	CharacterEvent *PaimonWishes `json:"wish-counter-character-event"`
	WeaponEvent    *PaimonWishes `json:"wish-counter-weapon-event"`
	Chronicled     *PaimonWishes `json:"wish-counter-chronicled"`
}

type PaimonWishes struct {
	Pulls []PaimonPull `json:"pulls"`
}

type PaimonPull struct {
	Type string `json:"type"` // "character" or "weapon"
	ID   string `json:"id"`   // paimon.moe slug, e.g. "raiden_shogun"
	Time string `json:"time"` // PaimonTimeLayout, server local time
}

// PaimonBanner pairs a banner category with its exported pulls.
type PaimonBanner struct {
	Category gacha.Category
	Wishes   *PaimonWishes
}

// Banners returns the exported banners in category order, skipping
// banners absent from the export.
func (e *PaimonExport) Banners() []PaimonBanner {
	all := []PaimonBanner{
		{gacha.Beginner, e.Beginners},
		{gacha.Standard, e.Standard},
		{gacha.Character, e.CharacterEvent},
		{gacha.Weapon, e.WeaponEvent},
		{gacha.Chronicled, e.Chronicled},
	}

	banners := make([]PaimonBanner, 0, len(all))
	for _, b := range all {
		if b.Wishes != nil {
			banners = append(banners, b)
		}
	}
	return banners
}

// ParsePaimonExport decodes the raw export text.
func ParsePaimonExport(data string) (*PaimonExport, error) {
	var export PaimonExport
	if err := json.Unmarshal([]byte(data), &export); err != nil {
		return nil, fmt.Errorf("decode paimon export: %w", err)
	}
	return &export, nil
}
