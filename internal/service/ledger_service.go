package service

import (
	"context"
	"errors"

	"engage/internal/models"
	"engage/internal/observability"
	"engage/internal/repository"
)

// LedgerService owns the token ledger: balance reads, the per-generation
// decrement, and the plan-driven resets.
type LedgerService struct {
	accountRepo repository.AccountRepository
}

func NewLedgerService(accountRepo repository.AccountRepository) *LedgerService {
	return &LedgerService{accountRepo: accountRepo}
}

// Balance returns the user's ledger row.
func (s *LedgerService) Balance(ctx context.Context, userID uint) (*models.TokenAccount, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, models.NewNotFoundError("Token account", userID)
		}
		return nil, err
	}
	return account, nil
}

// Consume deducts one token and returns the remaining balance. An exhausted
// or missing account surfaces as an AppError the handlers can map directly.
func (s *LedgerService) Consume(ctx context.Context, userID uint) (int, error) {
	remaining, err := s.accountRepo.Consume(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientTokens):
			return 0, models.NewInsufficientTokensError()
		case errors.Is(err, repository.ErrAccountNotFound):
			return 0, models.NewNotFoundError("Token account", userID)
		default:
			return 0, err
		}
	}
	observability.TokensConsumed.Inc()
	return remaining, nil
}

// EnsureAccount provisions a ledger row for a new user on the given plan.
func (s *LedgerService) EnsureAccount(ctx context.Context, userID uint, planID string) (*models.TokenAccount, error) {
	plan, ok := models.PlanByID(planID)
	if !ok {
		return nil, models.NewValidationError("Unknown plan: " + planID)
	}

	existing, err := s.accountRepo.GetByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}

	account := models.NewTokenAccount(userID, plan)
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ResetToPlanLimit refills the balance to the account's plan limit, as the
// monthly reset does.
func (s *LedgerService) ResetToPlanLimit(ctx context.Context, userID uint) (*models.TokenAccount, error) {
	account, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, ok := models.PlanByID(account.PlanID)
	if !ok {
		// Row carries a plan the catalog no longer knows; retire it to free.
		plan, _ = models.PlanByID(models.PlanFree)
	}

	if err := s.accountRepo.SetBalance(ctx, userID, plan.TokensPerMonth, plan.TokensPerMonth, plan.ID); err != nil {
		return nil, err
	}
	account.TokensRemaining = plan.TokensPerMonth
	account.TokensLimit = plan.TokensPerMonth
	account.PlanID = plan.ID
	return account, nil
}

// ChangePlan moves the account to a new plan and refills the balance to the
// new limit immediately.
func (s *LedgerService) ChangePlan(ctx context.Context, userID uint, planID string) (*models.TokenAccount, error) {
	plan, ok := models.PlanByID(planID)
	if !ok {
		return nil, models.NewValidationError("Unknown plan: " + planID)
	}

	account, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SetBalance(ctx, userID, plan.TokensPerMonth, plan.TokensPerMonth, plan.ID); err != nil {
		return nil, err
	}
	account.TokensRemaining = plan.TokensPerMonth
	account.TokensLimit = plan.TokensPerMonth
	account.PlanID = plan.ID
	return account, nil
}

// HasFeature reports whether the user's current plan unlocks a feature.
func (s *LedgerService) HasFeature(ctx context.Context, userID uint, feature string) (bool, error) {
	account, err := s.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	plan, ok := models.PlanByID(account.PlanID)
	if !ok {
		return false, nil
	}
	return plan.HasFeature(feature), nil
}
