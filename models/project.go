package models

import "time"

// Project is a portfolio entry created by a user.
type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Thumbnail   string     `gorm:"size:1024" json:"thumbnail"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Categories  []Category `gorm:"many2many:project_categories;" json:"categories"`
	Blocks      []Block    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"blocks,omitempty"`
}
