package service

import (
	"context"

	"engage/internal/models"
	"engage/internal/repository"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryService exposes a user's generation history and feedback updates.
type HistoryService struct {
	historyRepo repository.HistoryRepository
}

func NewHistoryService(historyRepo repository.HistoryRepository) *HistoryService {
	return &HistoryService{historyRepo: historyRepo}
}

// List returns the user's history, newest first.
func (s *HistoryService) List(ctx context.Context, userID uint, limit, offset int) ([]*models.HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.historyRepo.ListByUser(ctx, userID, limit, offset)
}

// SetFeedback records what the user did with a suggestion. Records are
// user-owned; updating someone else's row reads as not found.
func (s *HistoryService) SetFeedback(ctx context.Context, userID, recordID uint, feedback string) (*models.HistoryRecord, error) {
	if !models.ValidFeedback(feedback) {
		return nil, models.NewValidationError("feedback must be one of: approved, rejected, posted")
	}

	record, err := s.historyRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, models.NewNotFoundError("History record", recordID)
	}

	if err := s.historyRepo.UpdateFeedback(ctx, recordID, feedback); err != nil {
		return nil, err
	}
	record.Feedback = feedback
	return record, nil
}
