package models

import "time"

// Link is a social/external link shown on the public portfolio, with an uploaded icon.
type Link struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	Icon      string    `gorm:"size:1024" json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
