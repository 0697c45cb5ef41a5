// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"engage/internal/models"
	"engage/internal/persona"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CreateAccount persists a token account for the user on the given plan,
// with a realistic partially-spent balance.
func (f *Factory) CreateAccount(user *models.User, planID string, overrides ...func(*models.TokenAccount)) (*models.TokenAccount, error) {
	plan, ok := models.PlanByID(planID)
	if !ok {
		return nil, fmt.Errorf("unknown plan %q", planID)
	}

	account := models.NewTokenAccount(user.ID, plan)
	account.TokensRemaining = f.rand.Intn(plan.TokensPerMonth + 1)

	for _, override := range overrides {
		override(account)
	}

	if err := f.db.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create token account: %w", err)
	}
	return account, nil
}

// fakePost fabricates a LinkedIn-flavored post body.
func fakePost() string {
	openers := []string{
		"Excited to share that",
		"After months of work,",
		"Hot take:",
		"Lesson learned this week:",
		"We just crossed a milestone:",
	}
	return fmt.Sprintf("%s %s %s",
		openers[gofakeit.Number(0, len(openers)-1)],
		gofakeit.Sentence(12),
		gofakeit.Sentence(8))
}

// CreateHistoryBatch persists one full generation batch (3 rows) for the
// user, dated within the past maxDays days.
func (f *Factory) CreateHistoryBatch(user *models.User, personaName string, maxDays int) ([]*models.HistoryRecord, error) {
	if maxDays <= 0 {
		maxDays = 30
	}
	createdAt := time.Now().Add(
		-time.Duration(f.rand.Intn(maxDays*24)) * time.Hour)
	post := models.TruncatePostContent(fakePost())

	feedbacks := []string{
		models.FeedbackPending, models.FeedbackApproved,
		models.FeedbackRejected, models.FeedbackPosted,
	}

	records := make([]*models.HistoryRecord, 0, persona.SlotCount)
	for slot := 0; slot < persona.SlotCount; slot++ {
		records = append(records, &models.HistoryRecord{
			UserID:           user.ID,
			PostContent:      post,
			GeneratedComment: gofakeit.Sentence(14),
			Persona:          personaName,
			Confidence:       gofakeit.Number(75, 95),
			SlotIndex:        slot,
			Fallback:         f.rand.Intn(10) == 0,
			Feedback:         feedbacks[f.rand.Intn(len(feedbacks))],
			CreatedAt:        createdAt,
		})
	}

	if err := f.db.Create(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to create history batch: %w", err)
	}
	return records, nil
}
