package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hashblen/stardb-api/internal/gacha"
	"github.com/hashblen/stardb-api/internal/models"
)

const europeUID int32 = 700000001

func newImportStore() *MockWishStore {
	store := NewMockWishStore()
	store.Profiles[europeUID] = true
	store.Items["character/keqing"] = PaimonItem{ID: keqing, Rarity: 5}
	store.Items["character/raiden_shogun"] = PaimonItem{ID: raiden, Rarity: 5}
	store.Items["weapon/cool_steel"] = PaimonItem{ID: 11301, Rarity: 3}
	return store
}

func characterExport(pulls ...models.PaimonPull) *models.PaimonExport {
	return &models.PaimonExport{
		UID:            models.FlexUID(europeUID),
		CharacterEvent: &models.PaimonWishes{Pulls: pulls},
	}
}

func TestRegionOffset(t *testing.T) {
	tests := []struct {
		uid  int32
		want time.Duration
	}{
		{600000001, -5 * time.Hour},
		{700000001, time.Hour},
		{800000001, 8 * time.Hour},
		{100000001, 8 * time.Hour},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, regionOffset(tt.uid), "uid %d", tt.uid)
	}
}

func TestImportPaimon_FreshHistory(t *testing.T) {
	store := newImportStore()
	svc := NewImportService(store, gacha.DefaultPolicies(), zap.NewNop().Sugar())

	export := characterExport(
		models.PaimonPull{Type: "weapon", ID: "cool_steel", Time: "2024-01-01 12:00:00"},
		models.PaimonPull{Type: "weapon", ID: "cool_steel", Time: "2024-01-01 12:00:00"},
		models.PaimonPull{Type: "character", ID: "keqing", Time: "2024-01-01 12:01:00"},
		models.PaimonPull{Type: "character", ID: "raiden_shogun", Time: "2024-01-01 12:02:00"},
	)

	result, err := svc.ImportPaimon(context.Background(), export)
	require.NoError(t, err)

	assert.Equal(t, europeUID, result.UID)
	assert.Equal(t, 4, result.Total())
	assert.Equal(t, []gacha.Category{gacha.Character}, result.Categories)
	assert.Equal(t, 3, store.ResolveCalls, "repeated items are resolved once")

	wishes := store.Inserted[gacha.Character]
	require.Len(t, wishes, 4)
	for i, w := range wishes {
		assert.Equal(t, int64(i), w.ID)
		assert.Equal(t, europeUID, w.UID)
	}

	// Europe server time is UTC+1.
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), wishes[0].Timestamp)
	assert.Nil(t, wishes[0].Character)
	assert.Equal(t, int32(11301), *wishes[0].Weapon)
	assert.Equal(t, keqing, *wishes[2].Character)
	assert.Nil(t, wishes[2].Weapon)
}

func TestImportPaimon_OnlyOlderThanStored(t *testing.T) {
	store := newImportStore()
	earliest := time.Date(2024, 1, 1, 11, 1, 0, 0, time.UTC)
	store.Earliest[gacha.Character] = &earliest
	svc := NewImportService(store, gacha.DefaultPolicies(), zap.NewNop().Sugar())

	export := characterExport(
		models.PaimonPull{Type: "weapon", ID: "cool_steel", Time: "2024-01-01 12:00:00"},
		models.PaimonPull{Type: "character", ID: "keqing", Time: "2024-01-01 12:01:00"},
		models.PaimonPull{Type: "character", ID: "raiden_shogun", Time: "2024-01-01 12:02:00"},
	)

	result, err := svc.ImportPaimon(context.Background(), export)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total())
	require.Len(t, store.Inserted[gacha.Character], 1)
	assert.Equal(t, int64(0), store.Inserted[gacha.Character][0].ID)
}

func TestImportPaimon_NothingNew(t *testing.T) {
	store := newImportStore()
	earliest := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	store.Earliest[gacha.Character] = &earliest
	svc := NewImportService(store, gacha.DefaultPolicies(), zap.NewNop().Sugar())

	result, err := svc.ImportPaimon(context.Background(), characterExport(
		models.PaimonPull{Type: "character", ID: "keqing", Time: "2024-01-01 12:01:00"},
	))
	require.NoError(t, err)

	assert.Zero(t, result.Total())
	assert.Empty(t, result.Categories)
	assert.Nil(t, store.Inserted)
}

func TestImportPaimon_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		export  *models.PaimonExport
		wantErr error
	}{
		{
			name: "unknown profile",
			export: &models.PaimonExport{
				UID:      800000001,
				Standard: &models.PaimonWishes{},
			},
			wantErr: ErrUnknownProfile,
		},
		{
			name: "malformed time",
			export: characterExport(
				models.PaimonPull{Type: "character", ID: "keqing", Time: "yesterday"},
			),
			wantErr: ErrBadImport,
		},
		{
			name: "unknown item",
			export: characterExport(
				models.PaimonPull{Type: "character", ID: "paimon", Time: "2024-01-01 12:00:00"},
			),
			wantErr: ErrBadImport,
		},
		{
			name: "out of order",
			export: characterExport(
				models.PaimonPull{Type: "character", ID: "keqing", Time: "2024-01-02 12:00:00"},
				models.PaimonPull{Type: "character", ID: "keqing", Time: "2024-01-01 12:00:00"},
			),
			wantErr: gacha.ErrOutOfOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newImportStore()
			svc := NewImportService(store, gacha.DefaultPolicies(), zap.NewNop().Sugar())

			_, err := svc.ImportPaimon(context.Background(), tt.export)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Nil(t, store.Inserted)
		})
	}
}
