package logic

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hashblen/stardb-api/internal/gacha"
	"github.com/hashblen/stardb-api/internal/models"
)

// ImportResult describes what an import added.
type ImportResult struct {
	UID        int32
	Imported   map[gacha.Category]int
	Categories []gacha.Category // banners that received new wishes
}

func (r *ImportResult) Total() int {
	total := 0
	for _, n := range r.Imported {
		total += n
	}
	return total
}

type importService struct {
	store    WishStore
	policies gacha.PolicyTable
	logger   *zap.SugaredLogger
}

func NewImportService(store WishStore, policies gacha.PolicyTable, logger *zap.SugaredLogger) ImportService {
	return &importService{store: store, policies: policies, logger: logger}
}

// regionOffset is the server time zone of a uid, derived from its first digit.
func regionOffset(uid int32) time.Duration {
	switch strconv.Itoa(int(uid))[0] {
	case '6':
		return -5 * time.Hour
	case '7':
		return time.Hour
	default:
		return 8 * time.Hour
	}
}

// ImportPaimon stores the wishes of a paimon.moe export that are older than
// anything already on file. Statistics are not touched; the caller
// recalculates the returned categories.
func (s *importService) ImportPaimon(ctx context.Context, export *models.PaimonExport) (*ImportResult, error) {
	uid := int32(export.UID)

	exists, err := s.store.ProfileExists(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProfile, uid)
	}

	offset := regionOffset(uid)
	items := make(map[string]PaimonItem)
	resolve := func(kind, id string) (PaimonItem, error) {
		key := kind + "/" + id
		if item, ok := items[key]; ok {
			return item, nil
		}
		item, err := s.store.ResolvePaimonItem(ctx, kind, id)
		if err != nil {
			return PaimonItem{}, err
		}
		items[key] = item
		return item, nil
	}

	result := &ImportResult{UID: uid, Imported: make(map[gacha.Category]int)}
	batches := make(map[gacha.Category][]models.Wish)

	for _, banner := range export.Banners() {
		c := banner.Category

		policy, err := s.policies.Policy(c)
		if err != nil {
			return nil, err
		}

		earliest, err := s.store.EarliestTimestamp(ctx, uid, c)
		if err != nil {
			return nil, err
		}

		var (
			wishes []models.Wish
			pulls  []gacha.Pull
		)
		for i, p := range banner.Wishes.Pulls {
			local, err := time.Parse(models.PaimonTimeLayout, p.Time)
			if err != nil {
				return nil, fmt.Errorf("%w: %s pull %d: %v", ErrBadImport, c, i, err)
			}
			ts := local.Add(-offset)

			if earliest != nil && !ts.Before(*earliest) {
				continue
			}

			item, err := resolve(p.Type, p.ID)
			if err != nil {
				return nil, err
			}

			itemID := item.ID
			w := models.Wish{ID: int64(i), UID: uid, Timestamp: ts}
			if p.Type == "character" {
				w.Character = &itemID
			} else {
				w.Weapon = &itemID
			}

			wishes = append(wishes, w)
			pulls = append(pulls, gacha.Pull{Index: int64(i), Rarity: item.Rarity, ItemID: &itemID, Timestamp: ts})
		}

		if err := gacha.Validate(pulls, policy); err != nil {
			return nil, fmt.Errorf("%w: %s banner: %w", ErrBadImport, c, err)
		}

		if len(wishes) > 0 {
			batches[c] = wishes
			result.Imported[c] = len(wishes)
			result.Categories = append(result.Categories, c)
		}
	}

	if len(batches) > 0 {
		if err := s.store.InsertWishes(ctx, batches); err != nil {
			return nil, err
		}
	}

	s.logger.Infow("Paimon wishes imported", "uid", uid, "imported", result.Total(), "categories", result.Categories)
	return result, nil
}
