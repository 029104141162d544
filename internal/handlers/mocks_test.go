package handlers

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hashblen/stardb-api/internal/gacha"
	"github.com/hashblen/stardb-api/internal/logic"
	"github.com/hashblen/stardb-api/internal/models"
	"github.com/hashblen/stardb-api/internal/worker"
)

type MockQueue struct {
	EnqueueFunc func(job worker.Job) bool
	SubmitFunc  func(ctx context.Context, job worker.Job) error
	Jobs        []worker.Job
	Submitted   int
	Depth       int
}

func (m *MockQueue) Enqueue(job worker.Job) bool {
	if m.EnqueueFunc != nil && !m.EnqueueFunc(job) {
		return false
	}
	m.Jobs = append(m.Jobs, job)
	return true
}

func (m *MockQueue) Submit(ctx context.Context, job worker.Job) error {
	if m.SubmitFunc != nil {
		if err := m.SubmitFunc(ctx, job); err != nil {
			return err
		}
	}
	m.Submitted++
	m.Jobs = append(m.Jobs, job)
	return nil
}

func (m *MockQueue) QueueDepth() int { return m.Depth }

type MockStatsService struct {
	RecalculateFunc func(ctx context.Context, uid int32, categories ...gacha.Category) error
	GetStatsFunc    func(ctx context.Context, uid int32) (map[gacha.Category]*models.WishStat, error)
	Recalculated    []int32
}

func (m *MockStatsService) Recalculate(ctx context.Context, uid int32, categories ...gacha.Category) error {
	m.Recalculated = append(m.Recalculated, uid)
	if m.RecalculateFunc != nil {
		return m.RecalculateFunc(ctx, uid, categories...)
	}
	return nil
}

func (m *MockStatsService) GetStats(ctx context.Context, uid int32) (map[gacha.Category]*models.WishStat, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx, uid)
	}
	return map[gacha.Category]*models.WishStat{}, nil
}

type MockImportService struct {
	ImportPaimonFunc func(ctx context.Context, export *models.PaimonExport) (*logic.ImportResult, error)
}

func (m *MockImportService) ImportPaimon(ctx context.Context, export *models.PaimonExport) (*logic.ImportResult, error) {
	return m.ImportPaimonFunc(ctx, export)
}

// MockImportStatusStore keeps every status written, in order.
type MockImportStatusStore struct {
	mu      sync.Mutex
	History []models.ImportInfo
}

func (m *MockImportStatusStore) Set(ctx context.Context, info *models.ImportInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.History = append(m.History, *info)
	return nil
}

func (m *MockImportStatusStore) Get(ctx context.Context, uid int32) (*models.ImportInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.History) - 1; i >= 0; i-- {
		if m.History[i].UID == uid {
			info := m.History[i]
			return &info, nil
		}
	}
	return nil, nil
}

func (m *MockImportStatusStore) Statuses() []models.ImportStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	statuses := make([]models.ImportStatus, len(m.History))
	for i, info := range m.History {
		statuses[i] = info.Status
	}
	return statuses
}

type MockSessionStore struct {
	Sessions map[string]string
}

func (m *MockSessionStore) Username(ctx context.Context, sessionID string) (string, error) {
	if username, ok := m.Sessions[sessionID]; ok {
		return username, nil
	}
	return "", logic.ErrNotFound
}

type MockUsersService struct {
	Connections map[string][]int32
	Admins      map[string]bool
}

func (m *MockUsersService) UIDs(ctx context.Context, username string) ([]int32, error) {
	uids := m.Connections[username]
	if uids == nil {
		uids = []int32{}
	}
	return uids, nil
}

func (m *MockUsersService) IsAdmin(ctx context.Context, username string) (bool, error) {
	return m.Admins[username], nil
}

type MockAchievementsService struct {
	SetCommentFunc    func(ctx context.Context, id int64, comment string) error
	DeleteCommentFunc func(ctx context.Context, id int64) error
}

func (m *MockAchievementsService) SetComment(ctx context.Context, id int64, comment string) error {
	if m.SetCommentFunc != nil {
		return m.SetCommentFunc(ctx, id, comment)
	}
	return nil
}

func (m *MockAchievementsService) DeleteComment(ctx context.Context, id int64) error {
	if m.DeleteCommentFunc != nil {
		return m.DeleteCommentFunc(ctx, id)
	}
	return nil
}

type MockTierListService struct {
	GetCommunityTierListFunc func(ctx context.Context, lang models.Language) (*models.CommunityTierList, error)
}

func (m *MockTierListService) GetCommunityTierList(ctx context.Context, lang models.Language) (*models.CommunityTierList, error) {
	if m.GetCommunityTierListFunc != nil {
		return m.GetCommunityTierListFunc(ctx, lang)
	}
	return &models.CommunityTierList{Entries: []models.TierListEntry{}}, nil
}

// newTestHandler returns a handler backed by empty mocks. An admin session
// "admin-session" and a user session "user-session" are always available.
func newTestHandler(cfg Config) *Handler {
	if cfg.Queue == nil {
		cfg.Queue = &MockQueue{}
	}
	if cfg.Stats == nil {
		cfg.Stats = &MockStatsService{}
	}
	if cfg.ImportStatus == nil {
		cfg.ImportStatus = &MockImportStatusStore{}
	}
	if cfg.Sessions == nil {
		cfg.Sessions = &MockSessionStore{Sessions: map[string]string{
			"admin-session": "root",
			"user-session":  "traveler",
		}}
	}
	if cfg.Users == nil {
		cfg.Users = &MockUsersService{
			Connections: map[string][]int32{"traveler": {700000001, 800000002}},
			Admins:      map[string]bool{"root": true},
		}
	}
	if cfg.Achievements == nil {
		cfg.Achievements = &MockAchievementsService{}
	}
	if cfg.TierList == nil {
		cfg.TierList = &MockTierListService{}
	}
	cfg.Logger = zap.NewNop()
	return New(cfg)
}
