package models

import (
	"time"
)

// TokenAccount is the per-user token ledger row. The balance is stored
// directly as tokens_remaining next to the plan-derived tokens_limit, so a
// consume is a single conditional decrement and the invariant
// 0 <= tokens_remaining <= tokens_limit holds at the row level.
type TokenAccount struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User            User      `gorm:"foreignKey:UserID" json:"-"`
	TokensRemaining int       `gorm:"not null;default:0" json:"tokens_remaining"`
	TokensLimit     int       `gorm:"not null;default:0" json:"tokens_limit"`
	PlanID          string    `gorm:"not null;default:'free'" json:"plan_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewTokenAccount returns a fully funded account on the given plan.
func NewTokenAccount(userID uint, plan Plan) *TokenAccount {
	return &TokenAccount{
		UserID:          userID,
		TokensRemaining: plan.TokensPerMonth,
		TokensLimit:     plan.TokensPerMonth,
		PlanID:          plan.ID,
	}
}
