package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LearnerSchema is the top-level structure of a learner import file. The
// same shape is accepted as YAML or JSON.
type LearnerSchema struct {
	Learner    LearnerImport     `yaml:"learner" json:"learner"`
	Categories []CategoryImport  `yaml:"categories" json:"categories"`
	Outcomes   []OutcomeImport   `yaml:"outcomes,omitempty" json:"outcomes,omitempty"`
	Milestones []MilestoneImport `yaml:"milestones,omitempty" json:"milestones,omitempty"`
}

type LearnerImport struct {
	// ID is optional; a new learner gets a generated id.
	ID   string `yaml:"id,omitempty" json:"id,omitempty"`
	Goal string `yaml:"goal" json:"goal"`
}

type CategoryImport struct {
	Key           string         `yaml:"key" json:"key"`
	Label         string         `yaml:"label,omitempty" json:"label,omitempty"`
	Weight        float64        `yaml:"weight" json:"weight"`
	CurrentRating float64        `yaml:"current_rating" json:"current_rating"`
	TargetRating  *float64       `yaml:"target_rating,omitempty" json:"target_rating,omitempty"`
	Modules       []ModuleImport `yaml:"modules,omitempty" json:"modules,omitempty"`
}

type ModuleImport struct {
	ID               string   `yaml:"id" json:"id"`
	Title            string   `yaml:"title" json:"title"`
	EstimatedMinutes int      `yaml:"estimated_minutes,omitempty" json:"estimated_minutes,omitempty"`
	Prerequisites    []string `yaml:"prerequisites,omitempty" json:"prerequisites,omitempty"`
	Objectives       []string `yaml:"objectives,omitempty" json:"objectives,omitempty"`
}

type OutcomeImport struct {
	Category     string  `yaml:"category" json:"category"`
	AverageScore float64 `yaml:"average_score" json:"average_score"`
	RatingDelta  float64 `yaml:"rating_delta" json:"rating_delta"`
	SampleCount  int     `yaml:"sample_count,omitempty" json:"sample_count,omitempty"`
}

type MilestoneImport struct {
	Category    string `yaml:"category" json:"category"`
	Title       string `yaml:"title" json:"title"`
	CompletedAt string `yaml:"completed_at" json:"completed_at"`
}

// LoadLearnerSchema reads a learner import file. Files ending in .json are
// decoded as JSON, everything else as YAML. Unknown fields are rejected.
func LoadLearnerSchema(path string) (*LearnerSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) (*LearnerSchema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var schema LearnerSchema
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}

func ParseJSON(data []byte) (*LearnerSchema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var schema LearnerSchema
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
