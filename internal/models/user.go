package models

import "time"

// User represents a registered customer or administrator.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"type:varchar(30);not null"`
	Surname        string    `json:"surname" gorm:"type:varchar(30);not null"`
	Birthdate      time.Time `json:"birthdate" gorm:"type:date;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;type:varchar(40);not null"`
	HashedPassword string    `json:"-" gorm:"type:varchar(255);not null"`
	IsActive       bool      `json:"is_active" gorm:"not null"`
	IsAdmin        bool      `json:"is_admin" gorm:"index;not null"`
	IsUser         bool      `json:"is_user" gorm:"not null"`
}
