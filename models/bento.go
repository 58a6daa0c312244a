package models

import "time"

// BentoBlock is a titled cell of the skill grid; it groups short text items.
type BentoBlock struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"index;not null" json:"user_id"`
	Title     string      `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Items     []BentoItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// BentoItem is one text entry inside a bento block.
type BentoItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BentoBlockID uint      `gorm:"index;not null" json:"bento_id"`
	ContentText  string    `gorm:"size:255;not null" json:"contentText"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
