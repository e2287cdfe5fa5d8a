package models

import "time"

// Order is a point-in-time record of a purchase. It keeps a copy of the
// purchaser and the clothing instead of foreign keys, so deleting a user or
// a clothing item leaves the order untouched.
type Order struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	NameUser     string    `json:"name_user" gorm:"type:varchar(30);not null"`
	Birthdate    time.Time `json:"birthdate" gorm:"type:date;not null"`
	EmailUser    string    `json:"email_user" gorm:"uniqueIndex:idx_orders_email_clothing;type:varchar(40);not null"`
	NameClothing string    `json:"name_clothing" gorm:"uniqueIndex:idx_orders_email_clothing;type:varchar(20);not null"`
	Size         string    `json:"size" gorm:"type:varchar(4);not null"`
	CreatedAt    time.Time `json:"created_at"`
}
