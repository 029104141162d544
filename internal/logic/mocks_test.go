package logic

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/hashblen/stardb-api/internal/gacha"
	"github.com/hashblen/stardb-api/internal/models"
)

// scanInto copies values into scan destinations. Each value must have the
// exact type the destination points to, or be nil for a zero value.
func scanInto(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		dv.Set(reflect.ValueOf(values[i]))
	}
	return nil
}

type ExecCall struct {
	SQL  string
	Args []any
}

// MockPgPool implements PgPool for testing
type MockPgPool struct {
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Tx           *MockTx

	ExecCalls []ExecCall
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &MockRows{}, nil
}

func (m *MockPgPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{Err: pgx.ErrNoRows}
}

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.ExecCalls = append(m.ExecCalls, ExecCall{SQL: sql, Args: args})
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *MockPgPool) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.Tx == nil {
		m.Tx = &MockTx{}
	}
	return m.Tx, nil
}

// MockTx records statements executed inside a transaction.
type MockTx struct {
	pgx.Tx
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	ExecErr      error
	ExecCalls    []ExecCall
	Committed    bool
	RolledBack   bool
}

func (t *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if t.QueryFunc != nil {
		return t.QueryFunc(ctx, sql, args...)
	}
	return &MockRows{}, nil
}

func (t *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if t.QueryRowFunc != nil {
		return t.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{Err: pgx.ErrNoRows}
}

func (t *MockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.ExecCalls = append(t.ExecCalls, ExecCall{SQL: sql, Args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), t.ExecErr
}

func (t *MockTx) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

type MockRow struct {
	Values []any
	Err    error
}

func (r *MockRow) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	return scanInto(dest, r.Values)
}

// MockRows iterates over fixed row values.
type MockRows struct {
	Data [][]any
	curr int
}

func (r *MockRows) Close()                                       {}
func (r *MockRows) Err() error                                   { return nil }
func (r *MockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *MockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *MockRows) Next() bool {
	r.curr++
	return r.curr <= len(r.Data)
}
func (r *MockRows) Scan(dest ...any) error { return scanInto(dest, r.Data[r.curr-1]) }
func (r *MockRows) Values() ([]any, error) { return r.Data[r.curr-1], nil }
func (r *MockRows) RawValues() [][]byte    { return nil }
func (r *MockRows) Conn() *pgx.Conn        { return nil }

// MockRedis is an in-memory RedisClient.
type MockRedis struct {
	mu      sync.Mutex
	Strings map[string]string
	Hashes  map[string]map[string]string
	TTLs    map[string]time.Duration
	GetErr  error
}

func NewMockRedis() *MockRedis {
	return &MockRedis{
		Strings: make(map[string]string),
		Hashes:  make(map[string]map[string]string),
		TTLs:    make(map[string]time.Duration),
	}
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return redis.NewStringResult("", m.GetErr)
	}
	v, ok := m.Strings[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.Strings[key] = string(v)
	default:
		m.Strings[key] = fmt.Sprint(v)
	}
	m.TTLs[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *MockRedis) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.Hashes[key]
	if !ok {
		h = make(map[string]string)
		m.Hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[fmt.Sprint(values[i])] = fmt.Sprint(values[i+1])
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (m *MockRedis) HGet(ctx context.Context, key string, field string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Hashes[key][field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.Hashes[key]))
	for k, v := range m.Hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (m *MockRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TTLs[key] = expiration
	return redis.NewBoolResult(true, nil)
}

// MockWishStore is an in-memory WishStore for a single uid.
type MockWishStore struct {
	mu sync.Mutex

	History  map[gacha.Category][]gacha.Pull
	Earliest map[gacha.Category]*time.Time
	Items    map[string]PaimonItem
	Profiles map[int32]bool
	Stored   map[gacha.Category]gacha.Stats
	Stats    map[gacha.Category]*models.WishStat
	Inserted map[gacha.Category][]models.Wish

	PullsErr     error
	ResolveCalls int
	Locked       map[gacha.Category]int
}

func NewMockWishStore() *MockWishStore {
	return &MockWishStore{
		History:  make(map[gacha.Category][]gacha.Pull),
		Earliest: make(map[gacha.Category]*time.Time),
		Items:    make(map[string]PaimonItem),
		Profiles: make(map[int32]bool),
		Stored:   make(map[gacha.Category]gacha.Stats),
		Stats:    make(map[gacha.Category]*models.WishStat),
		Locked:   make(map[gacha.Category]int),
	}
}

func (m *MockWishStore) UIDs(ctx context.Context) ([]int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uids := []int32{}
	for uid := range m.Profiles {
		uids = append(uids, uid)
	}
	return uids, nil
}

func (m *MockWishStore) Pulls(ctx context.Context, uid int32, c gacha.Category) ([]gacha.Pull, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PullsErr != nil {
		return nil, m.PullsErr
	}
	return m.History[c], nil
}

func (m *MockWishStore) EarliestTimestamp(ctx context.Context, uid int32, c gacha.Category) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Earliest[c], nil
}

func (m *MockWishStore) InsertWishes(ctx context.Context, wishes map[gacha.Category][]models.Wish) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inserted = wishes
	return nil
}

func (m *MockWishStore) SetStats(ctx context.Context, uid int32, c gacha.Category, stats gacha.Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored[c] = stats
	return nil
}

func (m *MockWishStore) GetStats(ctx context.Context, uid int32, c gacha.Category) (*models.WishStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Stats[c], nil
}

func (m *MockWishStore) WithStatsLock(ctx context.Context, uid int32, c gacha.Category, fn func(WishStore) error) error {
	m.mu.Lock()
	m.Locked[c]++
	m.mu.Unlock()
	return fn(m)
}

func (m *MockWishStore) ResolvePaimonItem(ctx context.Context, kind, paimonID string) (PaimonItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolveCalls++
	item, ok := m.Items[kind+"/"+paimonID]
	if !ok {
		return PaimonItem{}, fmt.Errorf("%w: unknown %s %q", ErrBadImport, kind, paimonID)
	}
	return item, nil
}

func (m *MockWishStore) ProfileExists(ctx context.Context, uid int32) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Profiles[uid], nil
}
