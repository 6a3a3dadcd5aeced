package scheduler

import "time"

// Weights are the coefficients of the category priority score. They are
// configuration, not logic: tune them in YAML and check the property tests.
type Weights struct {
	Weight              float64 `yaml:"weight" json:"weight"`
	Deficit             float64 `yaml:"deficit" json:"deficit"`
	AssessmentGap       float64 `yaml:"assessment_gap" json:"assessment_gap"`
	NegativeDelta       float64 `yaml:"negative_delta" json:"negative_delta"`
	RequirementPressure float64 `yaml:"requirement_pressure" json:"requirement_pressure"`
}

func DefaultWeights() Weights {
	return Weights{
		Weight:              1.0,
		Deficit:             1.0,
		AssessmentGap:       0.6,
		NegativeDelta:       0.4,
		RequirementPressure: 0.8,
	}
}

// Config holds every tunable of a planning run.
type Config struct {
	Weights Weights `yaml:"weights" json:"weights"`

	DailyBudgetMinutes int `yaml:"daily_budget_minutes" json:"daily_budget_minutes"`
	StreakCap          int `yaml:"streak_cap" json:"streak_cap"`
	StreakWindowDays   int `yaml:"streak_window_days" json:"streak_window_days"`

	HorizonDays    int `yaml:"horizon_days" json:"horizon_days"`
	MaxHorizonDays int `yaml:"max_horizon_days" json:"max_horizon_days"`

	NearTermWindowDays     int `yaml:"near_term_window_days" json:"near_term_window_days"`
	FirstWeeksCoverageDays int `yaml:"first_weeks_coverage_days" json:"first_weeks_coverage_days"`
	RefresherIntervalDays  int `yaml:"refresher_interval_days" json:"refresher_interval_days"`
	RefresherMinutes       int `yaml:"refresher_minutes" json:"refresher_minutes"`

	DefaultModuleMinutes int `yaml:"default_module_minutes" json:"default_module_minutes"`
	PrimerMinutes        int `yaml:"primer_minutes" json:"primer_minutes"`
	MilestoneMinutes     int `yaml:"milestone_minutes" json:"milestone_minutes"`

	DefaultTargetRating   float64 `yaml:"default_target_rating" json:"default_target_rating"`
	RatingDeltaScale      float64 `yaml:"rating_delta_scale" json:"rating_delta_scale"`
	CalibrationBaseRating float64 `yaml:"calibration_base_rating" json:"calibration_base_rating"`
	CalibrationPerModule  float64 `yaml:"calibration_per_module" json:"calibration_per_module"`

	AdvisorTimeout time.Duration `yaml:"advisor_timeout" json:"advisor_timeout"`
}

func DefaultConfig() Config {
	return Config{
		Weights:                DefaultWeights(),
		DailyBudgetMinutes:     120,
		StreakCap:              2,
		StreakWindowDays:       7,
		HorizonDays:            30,
		MaxHorizonDays:         180,
		NearTermWindowDays:     14,
		FirstWeeksCoverageDays: 42,
		RefresherIntervalDays:  3,
		RefresherMinutes:       20,
		DefaultModuleMinutes:   30,
		PrimerMinutes:          30,
		MilestoneMinutes:       90,
		DefaultTargetRating:    1200,
		RatingDeltaScale:       50,
		CalibrationBaseRating:  1000,
		CalibrationPerModule:   25,
		AdvisorTimeout:         300 * time.Millisecond,
	}
}

// withDefaults fills zero values so a partially populated Config from a test
// or a sparse YAML file still plans sensibly.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Weights == (Weights{}) {
		c.Weights = d.Weights
	}
	if c.DailyBudgetMinutes <= 0 {
		c.DailyBudgetMinutes = d.DailyBudgetMinutes
	}
	if c.StreakCap <= 0 {
		c.StreakCap = d.StreakCap
	}
	if c.StreakWindowDays <= 0 {
		c.StreakWindowDays = d.StreakWindowDays
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = d.HorizonDays
	}
	if c.MaxHorizonDays < c.HorizonDays {
		c.MaxHorizonDays = max(d.MaxHorizonDays, c.HorizonDays)
	}
	if c.NearTermWindowDays <= 0 {
		c.NearTermWindowDays = d.NearTermWindowDays
	}
	if c.FirstWeeksCoverageDays <= 0 {
		c.FirstWeeksCoverageDays = d.FirstWeeksCoverageDays
	}
	if c.RefresherIntervalDays <= 0 {
		c.RefresherIntervalDays = d.RefresherIntervalDays
	}
	if c.RefresherMinutes <= 0 {
		c.RefresherMinutes = d.RefresherMinutes
	}
	if c.DefaultModuleMinutes <= 0 {
		c.DefaultModuleMinutes = d.DefaultModuleMinutes
	}
	if c.PrimerMinutes <= 0 {
		c.PrimerMinutes = d.PrimerMinutes
	}
	if c.MilestoneMinutes <= 0 {
		c.MilestoneMinutes = d.MilestoneMinutes
	}
	if c.DefaultTargetRating <= 0 {
		c.DefaultTargetRating = d.DefaultTargetRating
	}
	if c.RatingDeltaScale <= 0 {
		c.RatingDeltaScale = d.RatingDeltaScale
	}
	if c.AdvisorTimeout <= 0 {
		c.AdvisorTimeout = d.AdvisorTimeout
	}
	return c
}
