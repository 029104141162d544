package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hashblen/stardb-api/internal/models"
)

type tierListService struct {
	pg       PgPool
	redis    RedisClient
	cacheTTL time.Duration
	logger   *zap.SugaredLogger
}

func NewTierListService(pg PgPool, redis RedisClient, cacheTTL time.Duration, logger *zap.SugaredLogger) TierListService {
	return &tierListService{pg: pg, redis: redis, cacheTTL: cacheTTL, logger: logger}
}

func tierListKey(lang models.Language) string {
	return "community_tier_list:" + string(lang)
}

// GetCommunityTierList serves from the Redis cache when possible. Cache
// failures only cost a database round trip.
func (s *tierListService) GetCommunityTierList(ctx context.Context, lang models.Language) (*models.CommunityTierList, error) {
	if s.cacheTTL > 0 {
		cached, err := s.redis.Get(ctx, tierListKey(lang)).Bytes()
		switch {
		case err == nil:
			var list models.CommunityTierList
			if err := json.Unmarshal(cached, &list); err == nil {
				return &list, nil
			}
			s.logger.Warnw("Discarding corrupt tier list cache entry", "lang", lang)
		case !errors.Is(err, redis.Nil):
			s.logger.Warnw("Tier list cache read failed", "lang", lang, "error", err)
		}
	}

	list, err := s.query(ctx, lang)
	if err != nil {
		return nil, err
	}

	if s.cacheTTL > 0 {
		if data, err := json.Marshal(list); err == nil {
			if err := s.redis.Set(ctx, tierListKey(lang), data, s.cacheTTL).Err(); err != nil {
				s.logger.Warnw("Tier list cache write failed", "lang", lang, "error", err)
			}
		}
	}

	return list, nil
}

func (s *tierListService) query(ctx context.Context, lang models.Language) (*models.CommunityTierList, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT
			e.character,
			e.eidolon,
			e.average,
			e.variance,
			e.quartile_1,
			e.quartile_3,
			e.confidence_interval_95,
			e.votes,
			e.total_votes,
			ct.name,
			pt.name,
			et.name
		FROM community_tier_list_entries e
		JOIN characters c ON c.id = e.character
		JOIN characters_text ct ON ct.id = c.id AND ct.language = $1
		JOIN paths_text pt ON pt.id = c.path AND pt.language = $1
		JOIN elements_text et ON et.id = c.element AND et.language = $1
		ORDER BY e.average DESC, e.character, e.eidolon
	`, string(lang))
	if err != nil {
		return nil, fmt.Errorf("query tier list: %w", err)
	}
	defer rows.Close()

	list := &models.CommunityTierList{Entries: []models.TierListEntry{}}
	for rows.Next() {
		var (
			e          models.TierListEntry
			totalVotes int32
		)
		if err := rows.Scan(
			&e.Character, &e.Eidolon, &e.Average, &e.Variance,
			&e.Quartile1, &e.Quartile3, &e.ConfidenceInterval95, &e.Votes,
			&totalVotes, &e.CharacterName, &e.CharacterPath, &e.CharacterElement,
		); err != nil {
			return nil, fmt.Errorf("scan tier list entry: %w", err)
		}
		if len(list.Entries) == 0 {
			list.TotalVotes = totalVotes
		}
		list.Entries = append(list.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tier list: %w", err)
	}
	return list, nil
}
