package seed

import (
	"fmt"
	"log"

	"engage/internal/models"
	"engage/internal/persona"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	BatchesPerUser int
	ShouldClean    bool
	SkipBcrypt     bool
}

// Run populates the database with demo users, funded token accounts, and
// generation history.
func Run(f *Factory, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.BatchesPerUser <= 0 {
		opts.BatchesPerUser = 4
	}

	if opts.ShouldClean {
		if err := clean(f); err != nil {
			return err
		}
	}

	bank := persona.MustLoad()
	personas := bank.Names()
	plans := []string{models.PlanFree, models.PlanFree, models.PlanPro, models.PlanTeam}

	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return err
		}

		planID := plans[f.rand.Intn(len(plans))]
		if _, err := f.CreateAccount(user, planID); err != nil {
			return err
		}

		for b := 0; b < opts.BatchesPerUser; b++ {
			personaName := persona.Default
			if plan, _ := models.PlanByID(planID); plan.HasFeature(models.FeaturePersonas) {
				personaName = personas[f.rand.Intn(len(personas))]
			}
			if _, err := f.CreateHistoryBatch(user, personaName, 30); err != nil {
				return err
			}
		}
	}

	log.Printf("seeded %d users with accounts and history", opts.NumUsers)
	return nil
}

func clean(f *Factory) error {
	// Order respects foreign keys.
	for _, model := range []any{
		&models.HistoryRecord{},
		&models.TokenAccount{},
		&models.User{},
	} {
		if err := f.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clean %T: %w", model, err)
		}
	}
	return nil
}
