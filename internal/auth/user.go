package auth

import "time"

type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	DisplayName  string    `gorm:"type:text;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
	UpdatedAt    time.Time `gorm:"not null;default:now()"`
}
