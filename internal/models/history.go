package models

import (
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// Feedback states for a generated suggestion.
const (
	FeedbackPending  = "pending"
	FeedbackApproved = "approved"
	FeedbackRejected = "rejected"
	FeedbackPosted   = "posted"
)

// ValidFeedback reports whether s is a feedback state a client may set.
// Pending is the initial state only; it cannot be re-applied.
func ValidFeedback(s string) bool {
	switch s {
	case FeedbackApproved, FeedbackRejected, FeedbackPosted:
		return true
	}
	return false
}

// MaxStoredPostContent bounds the post excerpt persisted with each
// suggestion. The full text still feeds the generation prompt.
const MaxStoredPostContent = 500

// HistoryRecord persists one generated suggestion and the user's verdict on
// it. A generation call writes one row per suggestion (three per batch),
// each starting out pending. Rows are never deleted, only the feedback
// column moves.
type HistoryRecord struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	User             User           `gorm:"foreignKey:UserID" json:"-"`
	PostContent      string         `gorm:"type:text;not null" json:"post_content"`
	GeneratedComment string         `gorm:"type:text;not null" json:"generated_comment"`
	Persona          string         `gorm:"not null" json:"persona"`
	Confidence       int            `gorm:"not null" json:"confidence"`
	SlotIndex        int            `gorm:"not null" json:"slot_index"`
	Fallback         bool           `gorm:"not null;default:false" json:"fallback"`
	Feedback         string         `gorm:"not null;default:'pending';index" json:"feedback"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TruncatePostContent clamps post text to the stored bound without
// splitting a multi-byte rune.
func TruncatePostContent(s string) string {
	if len(s) <= MaxStoredPostContent {
		return s
	}
	cut := MaxStoredPostContent
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
