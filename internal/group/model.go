package group

import "time"

// Group is shared streak state for a set of members. The propagator is the
// only writer of GroupStreak/LastGroupCompletedDay.
type Group struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatorID uint64 `gorm:"index;not null"`

	Name         string `gorm:"type:text;not null"`
	Description  string `gorm:"type:text;not null;default:''"`
	Avatar       string `gorm:"type:text;not null;default:''"` // emoji
	TrackingType string `gorm:"type:text;not null;default:'shared'"` // shared | individual
	Duration     int    `gorm:"not null;default:0"`                  // challenge length in days

	InviteCode string `gorm:"uniqueIndex;not null"`
	IsActive   bool   `gorm:"not null;default:true"`

	GroupStreak           int     `gorm:"not null;default:0"`
	LastGroupCompletedDay *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

type GroupMember struct {
	GroupID   uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"primaryKey;index"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// GroupHabit links a member's habit to the group for tracking. Deleting
// the habit removes the link and may revert a same-day group credit.
type GroupHabit struct {
	GroupID uint64 `gorm:"primaryKey"`
	HabitID uint64 `gorm:"primaryKey;index"`
	UserID  uint64 `gorm:"index;not null"`
}
