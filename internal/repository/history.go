package repository

import (
	"context"
	"errors"

	"engage/internal/models"

	"gorm.io/gorm"
)

// HistoryRepository defines interface for generation-history operations.
type HistoryRepository interface {
	// CreateBatch inserts all rows of one generation batch.
	CreateBatch(ctx context.Context, records []*models.HistoryRecord) error
	GetByID(ctx context.Context, id uint) (*models.HistoryRecord, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.HistoryRecord, error)
	UpdateFeedback(ctx context.Context, id uint, feedback string) error
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) CreateBatch(ctx context.Context, records []*models.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

func (r *historyRepository) GetByID(ctx context.Context, id uint) (*models.HistoryRecord, error) {
	var record models.HistoryRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("History record", id)
		}
		return nil, err
	}
	return &record, nil
}

func (r *historyRepository) ListByUser(
	ctx context.Context,
	userID uint,
	limit, offset int,
) ([]*models.HistoryRecord, error) {
	var records []*models.HistoryRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *historyRepository) UpdateFeedback(ctx context.Context, id uint, feedback string) error {
	res := r.db.WithContext(ctx).
		Model(&models.HistoryRecord{}).
		Where("id = ?", id).
		Update("feedback", feedback)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("History record", id)
	}
	return nil
}
