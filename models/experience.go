package models

import "time"

// Experience types accepted by the API.
const (
	ExperienceEducation    = "education"
	ExperienceProfessional = "professional"
)

// Experience is a career or education entry on the portfolio timeline.
// Dates travel as ISO "2006-01-02" strings; nullable fields use pointers so a
// PATCH can distinguish "clear" from "leave unchanged".
type Experience struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	Location    *string   `gorm:"size:255" json:"location"`
	StartDate   *string   `gorm:"size:10" json:"start_date"`
	EndDate     *string   `gorm:"size:10" json:"end_date"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidExperienceType reports whether t is one of the accepted experience types.
func ValidExperienceType(t string) bool {
	return t == ExperienceEducation || t == ExperienceProfessional
}
