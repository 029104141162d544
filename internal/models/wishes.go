package models

import "time"

// Wish is one stored row of a gi_wishes_<category> table.
type Wish struct {
	ID        int64
	UID       int32
	Character *int32
	Weapon    *int32
	Timestamp time.Time
	Official  bool
}

// WishStat is the persisted statistics row of one uid and banner.
// Undefined values (no five star yet, no 50/50 rolled yet) are null.
// The 50/50 fields are null on banners without a guarantee.
type WishStat struct {
	UID        int32    `json:"uid"`
	Luck4      *float64 `json:"luck_4"`
	Luck5      *float64 `json:"luck_5"`
	WinRate    *float64 `json:"win_rate"`
	WinStreak  *int32   `json:"win_streak"`
	LossStreak *int32   `json:"loss_streak"`
}

type ImportStatus string

const (
	ImportImporting ImportStatus = "importing"
	ImportComputing ImportStatus = "computing"
	ImportFinished  ImportStatus = "finished"
	ImportError     ImportStatus = "error"
)

// ImportInfo tracks the progress of the latest import of a uid.
type ImportInfo struct {
	ID        string       `json:"id"`
	UID       int32        `json:"uid"`
	Status    ImportStatus `json:"status"`
	Imported  int          `json:"imported"`
	Error     string       `json:"error,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}
