package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/importer"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportLearner(ctx context.Context, filePath string) (*app.ImportResult, error) {
	schema, err := importer.LoadLearnerSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.ImportLearnerFromSchema(ctx, schema)
}

// ImportLearnerFromSchema writes a learner profile in one transaction. An
// existing learner keeps its history: categories and outcomes are upserted,
// module libraries replaced per imported category and milestone records
// appended unless already present.
func (s *importService) ImportLearnerFromSchema(ctx context.Context, schema *importer.LearnerSchema) (result *app.ImportResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "import-learner", fields, &err)()

	if errs := importer.ValidateLearnerSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	profile, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}
	fields["learner_id"] = profile.Learner.ID

	result = &app.ImportResult{
		CategoryCount: len(profile.Categories),
		OutcomeCount:  len(profile.Outcomes),
	}
	for _, mods := range profile.Modules {
		result.ModuleCount += len(mods)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		learners := repository.NewSQLiteLearnerRepo(tx)
		_, err := learners.GetByID(ctx, profile.Learner.ID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			if err := learners.Create(ctx, profile.Learner); err != nil {
				return fmt.Errorf("creating learner: %w", err)
			}
		case err != nil:
			return err
		default:
			fields["existing"] = true
			if err := learners.UpdateGoal(ctx, profile.Learner.ID, profile.Learner.GoalSummary); err != nil {
				return fmt.Errorf("updating learner: %w", err)
			}
		}

		categories := repository.NewSQLiteCategoryRepo(tx)
		modules := repository.NewSQLiteModuleRepo(tx)
		for _, c := range profile.Categories {
			if err := categories.Upsert(ctx, profile.Learner.ID, c); err != nil {
				return fmt.Errorf("writing category %s: %w", c.Key, err)
			}
			if err := modules.ReplaceCategory(ctx, profile.Learner.ID, c.Key, profile.Modules[c.Key]); err != nil {
				return fmt.Errorf("writing modules of %s: %w", c.Key, err)
			}
		}

		outcomes := repository.NewSQLiteOutcomeRepo(tx)
		for _, key := range sortedKeys(profile.Outcomes) {
			if err := outcomes.Upsert(ctx, profile.Learner.ID, key, profile.Outcomes[key]); err != nil {
				return fmt.Errorf("writing outcome of %s: %w", key, err)
			}
		}

		milestones := repository.NewSQLiteMilestoneRepo(tx)
		existing, err := milestones.ListByLearner(ctx, profile.Learner.ID)
		if err != nil {
			return err
		}
		for _, m := range profile.Milestones {
			if containsMilestone(existing, m) {
				continue
			}
			if err := milestones.Append(ctx, profile.Learner.ID, m); err != nil {
				return fmt.Errorf("writing milestone %q: %w", m.Title, err)
			}
			result.MilestoneCount++
		}

		result.Learner, err = learners.GetByID(ctx, profile.Learner.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["categories"] = result.CategoryCount
	fields["modules"] = result.ModuleCount
	return result, nil
}

func containsMilestone(records []domain.MilestoneRecord, m domain.MilestoneRecord) bool {
	for _, r := range records {
		if r.CategoryKey == m.CategoryKey && r.Title == m.Title && r.CompletedAt.Equal(m.CompletedAt) {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidationError carries every problem found in an import file.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(e.Errs))
	for _, err := range e.Errs {
		msg += "\n  - " + err.Error()
	}
	return msg
}

func formatValidationErrors(errs []error) error {
	return &ValidationError{Errs: errs}
}
