package importer

import (
	"fmt"
	"strings"
	"time"
)

// ValidateLearnerSchema checks the import schema before conversion and
// returns every problem found.
func ValidateLearnerSchema(schema *LearnerSchema) []error {
	var errs []error

	if strings.Contains(schema.Learner.ID, "/") {
		errs = append(errs, fmt.Errorf("learner.id %q must not contain '/'", schema.Learner.ID))
	}

	catKeys := make(map[string]bool)
	errs = append(errs, validateCategories(schema.Categories, catKeys)...)
	errs = append(errs, validateOutcomes(schema.Outcomes, catKeys)...)
	errs = append(errs, validateMilestones(schema.Milestones, catKeys)...)

	return errs
}

func validateCategories(cats []CategoryImport, keys map[string]bool) []error {
	var errs []error
	for i, c := range cats {
		prefix := fmt.Sprintf("categories[%d]", i)
		if c.Key == "" {
			errs = append(errs, fmt.Errorf("%s.key is required", prefix))
		} else if strings.Contains(c.Key, "/") {
			errs = append(errs, fmt.Errorf("%s.key %q must not contain '/'", prefix, c.Key))
		} else if keys[c.Key] {
			errs = append(errs, fmt.Errorf("%s.key %q is duplicated", prefix, c.Key))
		} else {
			keys[c.Key] = true
		}
		if c.Weight < 0 {
			errs = append(errs, fmt.Errorf("%s.weight must not be negative", prefix))
		}
		if c.CurrentRating < 0 {
			errs = append(errs, fmt.Errorf("%s.current_rating must not be negative", prefix))
		}
		if c.TargetRating != nil && *c.TargetRating <= 0 {
			errs = append(errs, fmt.Errorf("%s.target_rating must be positive", prefix))
		}
		errs = append(errs, validateModules(prefix, c.Modules)...)
	}
	return errs
}

func validateModules(prefix string, modules []ModuleImport) []error {
	var errs []error
	ids := make(map[string]bool, len(modules))
	for i, m := range modules {
		mp := fmt.Sprintf("%s.modules[%d]", prefix, i)
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", mp))
			continue
		}
		if strings.Contains(m.ID, "/") {
			errs = append(errs, fmt.Errorf("%s.id %q must not contain '/'", mp, m.ID))
		}
		if ids[m.ID] {
			errs = append(errs, fmt.Errorf("%s.id %q is duplicated", mp, m.ID))
		}
		ids[m.ID] = true
		if m.Title == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", mp))
		}
		if m.EstimatedMinutes < 0 {
			errs = append(errs, fmt.Errorf("%s.estimated_minutes must not be negative", mp))
		}
	}

	for i, m := range modules {
		for _, p := range m.Prerequisites {
			switch {
			case p == m.ID:
				errs = append(errs, fmt.Errorf("%s.modules[%d]: module %q cannot require itself", prefix, i, m.ID))
			case !ids[p]:
				errs = append(errs, fmt.Errorf("%s.modules[%d]: unknown prerequisite %q", prefix, i, p))
			}
		}
	}
	return errs
}

func validateOutcomes(outcomes []OutcomeImport, keys map[string]bool) []error {
	var errs []error
	seen := make(map[string]bool)
	for i, o := range outcomes {
		prefix := fmt.Sprintf("outcomes[%d]", i)
		if !keys[o.Category] {
			errs = append(errs, fmt.Errorf("%s.category %q is not a declared category", prefix, o.Category))
		}
		if seen[o.Category] {
			errs = append(errs, fmt.Errorf("%s.category %q has more than one outcome", prefix, o.Category))
		}
		seen[o.Category] = true
		if o.AverageScore < 0 || o.AverageScore > 1 {
			errs = append(errs, fmt.Errorf("%s.average_score must be between 0 and 1", prefix))
		}
		if o.SampleCount < 0 {
			errs = append(errs, fmt.Errorf("%s.sample_count must not be negative", prefix))
		}
	}
	return errs
}

func validateMilestones(milestones []MilestoneImport, keys map[string]bool) []error {
	var errs []error
	for i, m := range milestones {
		prefix := fmt.Sprintf("milestones[%d]", i)
		if !keys[m.Category] {
			errs = append(errs, fmt.Errorf("%s.category %q is not a declared category", prefix, m.Category))
		}
		if m.Title == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if _, err := parseTimestamp(m.CompletedAt); err != nil {
			errs = append(errs, fmt.Errorf("%s.completed_at: %w", prefix, err))
		}
	}
	return errs
}

// parseTimestamp accepts RFC 3339 or a bare YYYY-MM-DD date.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q (expected RFC 3339 or YYYY-MM-DD)", s)
	}
	return t, nil
}
