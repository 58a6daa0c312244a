package models

// Category tags projects. Names are reused case-insensitively instead of duplicated.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;uniqueIndex;not null" json:"name"`
}
