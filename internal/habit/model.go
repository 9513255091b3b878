package habit

import (
	"time"

	"github.com/lib/pq"
)

// Habit is owned by exactly one user. Schedule metadata (active days,
// reminder, duration) is opaque to streak accounting; only Completions
// feeds the reconciliation engine.
type Habit struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	Name          string `gorm:"type:text;not null"`
	MicroIdentity string `gorm:"type:text;not null;default:''"`
	Type          string `gorm:"type:text;not null;default:''"`
	Goal          string `gorm:"type:text;not null;default:''"`

	ActiveDays      pq.StringArray `gorm:"type:text[];not null;default:'{}'"` // mon..sun
	ReminderEnabled bool           `gorm:"not null;default:false"`
	ReminderTime    *string        `gorm:"type:text"` // HH:MM wall clock in the streak timezone
	Visibility      string         `gorm:"type:text;not null;default:'private'"`
	Duration        int            `gorm:"not null;default:0"` // minutes

	// Completions is the set of day ids this habit was marked done.
	// Updates replace the whole set; entries are canonical YYYY-MM-DD.
	Completions pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// StreakLedger is the durable per-user streak state, one row per user,
// created lazily by the first trigger that needs it.
type StreakLedger struct {
	UserID uint64 `gorm:"primaryKey"`

	StreakCount      int            `gorm:"not null;default:0"`
	LastCompletedDay *string        `gorm:"type:text"`
	History          pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
