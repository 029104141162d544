package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hashblen/stardb-api/internal/gacha"
	"github.com/hashblen/stardb-api/internal/models"
)

// PaimonItem is a character or weapon resolved from its paimon.moe slug.
type PaimonItem struct {
	ID     int32
	Rarity int
}

type wishStore struct {
	pg       PgPool
	policies gacha.PolicyTable
}

// NewWishStore uses policies to pick the stats columns of each banner:
// banners without a guarantee only store luck_4 and luck_5.
func NewWishStore(pg PgPool, policies gacha.PolicyTable) WishStore {
	return &wishStore{pg: pg, policies: policies}
}

// Table names come from the closed gacha.Category set, never from user input.
func wishesTable(c gacha.Category) string { return "gi_wishes_" + string(c) }
func statsTable(c gacha.Category) string  { return "gi_wishes_stats_" + string(c) }

// UIDs returns every uid with at least one stored wish.
func (s *wishStore) UIDs(ctx context.Context) ([]int32, error) {
	query := "SELECT uid FROM " + wishesTable(gacha.Categories[0])
	for _, c := range gacha.Categories[1:] {
		query += " UNION SELECT uid FROM " + wishesTable(c)
	}
	query += " ORDER BY uid"

	rows, err := s.pg.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query uids: %w", err)
	}
	defer rows.Close()

	uids := []int32{}
	for rows.Next() {
		var uid int32
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan uid: %w", err)
		}
		uids = append(uids, uid)
	}
	return uids, rows.Err()
}

// Pulls returns the full history of a banner, oldest first.
func (s *wishStore) Pulls(ctx context.Context, uid int32, category gacha.Category) ([]gacha.Pull, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT
			w.id,
			w.timestamp,
			w.character,
			w.weapon,
			COALESCE(c.rarity, wp.rarity, 0)
		FROM `+wishesTable(category)+` w
		LEFT JOIN gi_characters c ON c.id = w.character
		LEFT JOIN gi_weapons wp ON wp.id = w.weapon
		WHERE w.uid = $1
		ORDER BY w.timestamp, w.id
	`, uid)
	if err != nil {
		return nil, fmt.Errorf("query %s pulls: %w", category, err)
	}
	defer rows.Close()

	pulls := []gacha.Pull{}
	for rows.Next() {
		var (
			p                 gacha.Pull
			character, weapon *int32
			rarity            int32
		)
		if err := rows.Scan(&p.Index, &p.Timestamp, &character, &weapon, &rarity); err != nil {
			return nil, fmt.Errorf("scan %s pull: %w", category, err)
		}
		p.Rarity = int(rarity)
		p.ItemID = character
		if p.ItemID == nil {
			p.ItemID = weapon
		}
		pulls = append(pulls, p)
	}
	return pulls, rows.Err()
}

// EarliestTimestamp returns nil when nothing is stored for the banner.
func (s *wishStore) EarliestTimestamp(ctx context.Context, uid int32, category gacha.Category) (*time.Time, error) {
	var ts *time.Time
	err := s.pg.QueryRow(ctx,
		"SELECT MIN(timestamp) FROM "+wishesTable(category)+" WHERE uid = $1",
		uid).Scan(&ts)
	if err != nil {
		return nil, fmt.Errorf("query earliest %s timestamp: %w", category, err)
	}
	return ts, nil
}

// InsertWishes stores all banners in a single transaction.
func (s *wishStore) InsertWishes(ctx context.Context, wishes map[gacha.Category][]models.Wish) error {
	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range gacha.Categories {
		batch := wishes[c]
		if len(batch) == 0 {
			continue
		}

		var (
			ids        = make([]int64, len(batch))
			uids       = make([]int32, len(batch))
			characters = make([]*int32, len(batch))
			weapons    = make([]*int32, len(batch))
			timestamps = make([]time.Time, len(batch))
			official   = make([]bool, len(batch))
		)
		for i, w := range batch {
			ids[i] = w.ID
			uids[i] = w.UID
			characters[i] = w.Character
			weapons[i] = w.Weapon
			timestamps[i] = w.Timestamp
			official[i] = w.Official
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO `+wishesTable(c)+` (id, uid, character, weapon, timestamp, official)
			SELECT * FROM UNNEST($1::bigint[], $2::integer[], $3::integer[], $4::integer[], $5::timestamptz[], $6::boolean[])
			ON CONFLICT DO NOTHING
		`, ids, uids, characters, weapons, timestamps, official)
		if err != nil {
			return fmt.Errorf("insert %s wishes: %w", c, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// WithStatsLock serializes recalculations of one uid and banner across
// every process sharing the database. fn must not use the store from more
// than one goroutine.
func (s *wishStore) WithStatsLock(ctx context.Context, uid int32, category gacha.Category, fn func(WishStore) error) error {
	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", uid, statsLockKey(category)); err != nil {
		return fmt.Errorf("lock %s stats: %w", category, err)
	}
	if err := fn(&wishStore{pg: tx, policies: s.policies}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func statsLockKey(category gacha.Category) int32 {
	for i, c := range gacha.Categories {
		if c == category {
			return int32(i)
		}
	}
	return -1
}

// SetStats replaces the stored statistics of a uid. Undefined ratios are
// written as NULL.
func (s *wishStore) SetStats(ctx context.Context, uid int32, category gacha.Category, stats gacha.Stats) error {
	policy, err := s.policies.Policy(category)
	if err != nil {
		return err
	}

	if !policy.Guarantee {
		_, err = s.pg.Exec(ctx, `
			INSERT INTO `+statsTable(category)+` (uid, luck_4, luck_5)
			VALUES ($1, $2, $3)
			ON CONFLICT (uid) DO UPDATE SET
				luck_4 = EXCLUDED.luck_4,
				luck_5 = EXCLUDED.luck_5
		`, uid, stats.Luck4.Ptr(), stats.Luck5.Ptr())
		if err != nil {
			return fmt.Errorf("upsert %s stats: %w", category, err)
		}
		return nil
	}

	var (
		winRate               *float64
		winStreak, lossStreak *int32
	)
	if g := stats.Guarantee; g != nil {
		winRate = g.WinRate.Ptr()
		ws, ls := int32(g.MaxWinStreak), int32(g.MaxLossStreak)
		winStreak, lossStreak = &ws, &ls
	}

	_, err = s.pg.Exec(ctx, `
		INSERT INTO `+statsTable(category)+` (uid, luck_4, luck_5, win_rate, win_streak, loss_streak)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uid) DO UPDATE SET
			luck_4 = EXCLUDED.luck_4,
			luck_5 = EXCLUDED.luck_5,
			win_rate = EXCLUDED.win_rate,
			win_streak = EXCLUDED.win_streak,
			loss_streak = EXCLUDED.loss_streak
	`, uid, stats.Luck4.Ptr(), stats.Luck5.Ptr(), winRate, winStreak, lossStreak)
	if err != nil {
		return fmt.Errorf("upsert %s stats: %w", category, err)
	}
	return nil
}

// GetStats returns nil when no statistics were computed yet.
func (s *wishStore) GetStats(ctx context.Context, uid int32, category gacha.Category) (*models.WishStat, error) {
	policy, err := s.policies.Policy(category)
	if err != nil {
		return nil, err
	}

	stat := &models.WishStat{UID: uid}
	if policy.Guarantee {
		err = s.pg.QueryRow(ctx, `
			SELECT luck_4, luck_5, win_rate, win_streak, loss_streak
			FROM `+statsTable(category)+`
			WHERE uid = $1
		`, uid).Scan(&stat.Luck4, &stat.Luck5, &stat.WinRate, &stat.WinStreak, &stat.LossStreak)
	} else {
		err = s.pg.QueryRow(ctx,
			"SELECT luck_4, luck_5 FROM "+statsTable(category)+" WHERE uid = $1",
			uid).Scan(&stat.Luck4, &stat.Luck5)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query %s stats: %w", category, err)
	}
	return stat, nil
}

// ResolvePaimonItem maps a paimon.moe slug to our character or weapon id.
func (s *wishStore) ResolvePaimonItem(ctx context.Context, kind, paimonID string) (PaimonItem, error) {
	var table string
	switch kind {
	case "character":
		table = "gi_characters"
	case "weapon":
		table = "gi_weapons"
	default:
		return PaimonItem{}, fmt.Errorf("%w: unknown item type %q", ErrBadImport, kind)
	}

	var item PaimonItem
	err := s.pg.QueryRow(ctx,
		"SELECT id, rarity FROM "+table+" WHERE paimon_moe_id = $1",
		paimonID).Scan(&item.ID, &item.Rarity)
	if errors.Is(err, pgx.ErrNoRows) {
		return PaimonItem{}, fmt.Errorf("%w: unknown %s %q", ErrBadImport, kind, paimonID)
	}
	if err != nil {
		return PaimonItem{}, fmt.Errorf("resolve %s %q: %w", kind, paimonID, err)
	}
	return item, nil
}

func (s *wishStore) ProfileExists(ctx context.Context, uid int32) (bool, error) {
	var exists bool
	err := s.pg.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM gi_profiles WHERE uid = $1)",
		uid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query profile: %w", err)
	}
	return exists, nil
}
