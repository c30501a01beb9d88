package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/validation"
	"gopkg.in/yaml.v3"
)

// Seed is the optional first-start content loaded from SEED_FILE
type Seed struct {
	Settings *models.Settings       `yaml:"settings"`
	Patterns []models.TrainedPattern `yaml:"patterns"`
}

// LoadSeed reads and validates a YAML seed file. An empty path returns an empty seed.
// Settings keys missing from the file keep their defaults.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return &Seed{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML
func ParseSeed(data []byte) (*Seed, error) {
	var raw struct {
		Settings yaml.Node               `yaml:"settings"`
		Patterns []models.TrainedPattern `yaml:"patterns"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	seed := &Seed{Patterns: raw.Patterns}
	if !raw.Settings.IsZero() {
		settings := models.DefaultSettings()
		if err := raw.Settings.Decode(&settings); err != nil {
			return nil, fmt.Errorf("failed to parse seed settings: %w", err)
		}
		if err := validation.Validate.Struct(settings); err != nil {
			return nil, fmt.Errorf("invalid seed settings: %w", err)
		}
		seed.Settings = &settings
	}

	var errs []error
	for i, pattern := range seed.Patterns {
		if err := validation.Validate.Struct(pattern); err != nil {
			errs = append(errs, fmt.Errorf("invalid seed pattern %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return seed, nil
}
