package logic

import (
	"context"
	"fmt"
)

type usersService struct {
	pg PgPool
}

func NewUsersService(pg PgPool) UsersService {
	return &usersService{pg: pg}
}

// UIDs returns the game accounts connected to a user.
func (s *usersService) UIDs(ctx context.Context, username string) ([]int32, error) {
	rows, err := s.pg.Query(ctx,
		"SELECT uid FROM connections WHERE username = $1 ORDER BY uid",
		username)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	uids := []int32{}
	for rows.Next() {
		var uid int32
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		uids = append(uids, uid)
	}
	return uids, rows.Err()
}

func (s *usersService) IsAdmin(ctx context.Context, username string) (bool, error) {
	var admin bool
	err := s.pg.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM admins WHERE username = $1)",
		username).Scan(&admin)
	if err != nil {
		return false, fmt.Errorf("query admins: %w", err)
	}
	return admin, nil
}
