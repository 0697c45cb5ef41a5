package repository

import (
	"context"
	"errors"

	"engage/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAccountNotFound is returned when no ledger row exists for a user.
var ErrAccountNotFound = errors.New("token account not found")

// ErrInsufficientTokens is returned when a consume finds no balance left.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// AccountRepository defines interface for token ledger operations.
type AccountRepository interface {
	Create(ctx context.Context, account *models.TokenAccount) error
	GetByUserID(ctx context.Context, userID uint) (*models.TokenAccount, error)
	// Consume decrements one token. The check, the decrement and the
	// remaining-balance read are a single conditional UPDATE with
	// RETURNING, so concurrent requests can never double-spend and the
	// reported remainder is exact.
	Consume(ctx context.Context, userID uint) (remaining int, err error)
	// SetBalance overwrites remaining/limit/plan in one statement.
	SetBalance(ctx context.Context, userID uint, remaining, limit int, planID string) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.TokenAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uint) (*models.TokenAccount, error) {
	var account models.TokenAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) Consume(ctx context.Context, userID uint) (int, error) {
	var account models.TokenAccount
	res := r.db.WithContext(ctx).
		Model(&account).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "tokens_remaining"}}}).
		Where("user_id = ? AND tokens_remaining > 0", userID).
		UpdateColumn("tokens_remaining", gorm.Expr("tokens_remaining - 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// Either the row is missing or the balance is zero; distinguish
		// so callers can provision vs. reject.
		if _, err := r.GetByUserID(ctx, userID); err != nil {
			return 0, err
		}
		return 0, ErrInsufficientTokens
	}
	return account.TokensRemaining, nil
}

func (r *accountRepository) SetBalance(ctx context.Context, userID uint, remaining, limit int, planID string) error {
	res := r.db.WithContext(ctx).
		Model(&models.TokenAccount{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"tokens_remaining": remaining,
			"tokens_limit":     limit,
			"plan_id":          planID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
