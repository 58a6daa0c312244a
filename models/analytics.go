package models

import "time"

// PortfolioView is one recorded, deduplicated visit to a public portfolio.
// Rows are insert-only; the visitor is identified by an opaque fingerprint,
// never by raw IP or user agent.
type PortfolioView struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"index:idx_views_user_fp_at;not null" json:"user_id"`
	VisitorFingerprint string    `gorm:"size:64;index:idx_views_user_fp_at;not null" json:"visitor_fingerprint"`
	SessionID          string    `gorm:"size:36;not null" json:"session_id"`
	ViewedAt           time.Time `gorm:"index:idx_views_user_fp_at;not null" json:"viewed_at"`
	CreatedAt          time.Time `json:"created_at"`
}

// PortfolioAnalytics keeps the aggregate view counters per portfolio owner.
// total_views only ever grows; the row is created lazily on first read.
type PortfolioAnalytics struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalViews     int64      `gorm:"not null;default:0" json:"total_views"`
	UniqueVisitors int64      `gorm:"not null;default:0" json:"unique_visitors"`
	LastViewedAt   *time.Time `json:"last_viewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
