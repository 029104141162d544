package logic

import (
	"context"
	"fmt"
)

type achievementsService struct {
	pg PgPool
}

func NewAchievementsService(pg PgPool) AchievementsService {
	return &achievementsService{pg: pg}
}

func (s *achievementsService) SetComment(ctx context.Context, id int64, comment string) error {
	tag, err := s.pg.Exec(ctx,
		"UPDATE achievements SET comment = $2 WHERE id = $1",
		id, comment)
	if err != nil {
		return fmt.Errorf("update achievement comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("achievement %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *achievementsService) DeleteComment(ctx context.Context, id int64) error {
	tag, err := s.pg.Exec(ctx,
		"UPDATE achievements SET comment = NULL WHERE id = $1",
		id)
	if err != nil {
		return fmt.Errorf("delete achievement comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("achievement %d: %w", id, ErrNotFound)
	}
	return nil
}
