package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"engage/internal/generation"
	"engage/internal/models"
	"engage/internal/observability"
	"engage/internal/repository"

	"github.com/redis/go-redis/v9"
)

// inflightTTL bounds how long the double-submit guard can stick if a
// request dies without releasing it.
const inflightTTL = 15 * time.Second

// SuggestionProducer is the slice of the generation adapter this service
// needs; it exists so tests can swap in a canned batch.
type SuggestionProducer interface {
	Generate(ctx context.Context, postContent, personaName string) []generation.Suggestion
}

type GenerationService struct {
	adapter     SuggestionProducer
	ledger      *LedgerService
	historyRepo repository.HistoryRepository
	redisClient *redis.Client
	logger      *slog.Logger
}

// GenerateInput carries one suggestion request.
type GenerateInput struct {
	UserID      uint
	PostContent string
	Persona     string
}

// GenerateResult is the successful outcome of a suggestion batch.
type GenerateResult struct {
	Suggestions     []generation.Suggestion
	Records         []*models.HistoryRecord
	TokensRemaining int
}

func NewGenerationService(
	adapter SuggestionProducer,
	ledger *LedgerService,
	historyRepo repository.HistoryRepository,
	redisClient *redis.Client,
	logger *slog.Logger,
) *GenerationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationService{
		adapter:     adapter,
		ledger:      ledger,
		historyRepo: historyRepo,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Generate runs one metered suggestion batch: guard against a concurrent
// request from the same user, verify the balance, produce the batch, then
// deduct exactly one token and record the batch in history.
func (s *GenerationService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if in.PostContent == "" {
		observability.GenerationsTotal.WithLabelValues("rejected").Inc()
		return nil, models.NewValidationError("post_content is required")
	}

	release, err := s.acquireInflight(ctx, in.UserID)
	if err != nil {
		observability.GenerationsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	defer release()

	start := time.Now()

	// Reject exhausted balances before touching the model so a 402 never
	// costs an upstream call.
	account, err := s.ledger.Balance(ctx, in.UserID)
	if err != nil {
		observability.GenerationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if account.TokensRemaining <= 0 {
		observability.GenerationsTotal.WithLabelValues("insufficient_tokens").Inc()
		return nil, models.NewInsufficientTokensError()
	}

	suggestions := s.adapter.Generate(ctx, in.PostContent, in.Persona)

	// The conditional decrement can still lose a race with a parallel
	// consumer, so its failure is authoritative over the read above.
	remaining, err := s.ledger.Consume(ctx, in.UserID)
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "INSUFFICIENT_TOKENS" {
			observability.GenerationsTotal.WithLabelValues("insufficient_tokens").Inc()
		} else {
			observability.GenerationsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	records := s.recordBatch(ctx, in, suggestions)

	observability.GenerationsTotal.WithLabelValues("ok").Inc()
	observability.GenerationLatency.Observe(time.Since(start).Seconds())

	return &GenerateResult{
		Suggestions:     suggestions,
		Records:         records,
		TokensRemaining: remaining,
	}, nil
}

// recordBatch writes one history row per suggestion. The token is already
// spent at this point, so a storage failure is logged rather than turned
// into a user-facing error.
func (s *GenerationService) recordBatch(ctx context.Context, in GenerateInput, suggestions []generation.Suggestion) []*models.HistoryRecord {
	stored := models.TruncatePostContent(in.PostContent)
	records := make([]*models.HistoryRecord, 0, len(suggestions))
	for i, sug := range suggestions {
		records = append(records, &models.HistoryRecord{
			UserID:           in.UserID,
			PostContent:      stored,
			GeneratedComment: sug.Text,
			Persona:          in.Persona,
			Confidence:       sug.Confidence,
			SlotIndex:        i,
			Fallback:         sug.Fallback,
			Feedback:         models.FeedbackPending,
		})
	}

	if err := s.historyRepo.CreateBatch(ctx, records); err != nil {
		s.logger.Error("failed to record generation batch",
			slog.Uint64("user_id", uint64(in.UserID)),
			slog.String("error", err.Error()))
		return nil
	}
	return records
}

// acquireInflight takes the per-user double-submit lock. With no Redis
// configured the guard is skipped rather than failing requests.
func (s *GenerationService) acquireInflight(ctx context.Context, userID uint) (func(), error) {
	if s.redisClient == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("inflight:generate:%d", userID)
	ok, err := s.redisClient.SetNX(ctx, key, "1", inflightTTL).Result()
	if err != nil {
		observability.RedisErrors.WithLabelValues("inflight").Inc()
		s.logger.Warn("inflight guard unavailable, allowing request",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()))
		return func() {}, nil
	}
	if !ok {
		return nil, models.NewRequestInFlightError()
	}

	return func() {
		if err := s.redisClient.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			observability.RedisErrors.WithLabelValues("inflight").Inc()
		}
	}, nil
}
