package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// RotaOverride defines a recurrence-rule-matched override to apply when
// building shifts. RRule is parsed and expanded by the caller, never by the
// allocation engine itself.
type RotaOverride struct {
	RRule                string   `yaml:"rrule" validate:"required"`
	ShiftSize            *int     `yaml:"shiftSize,omitempty" validate:"omitempty,min=0"`
	CustomPreallocations []string `yaml:"customPreallocations,omitempty"`
	Closed               bool     `yaml:"closed,omitempty"`
}

// CriterionWeights overrides the group/affinity weight pair for one
// built-in criterion. Zero fields fall back to the service layer's default
// weight constants.
type CriterionWeights struct {
	Group    float64 `yaml:"group,omitempty"`
	Affinity float64 `yaml:"affinity,omitempty"`
}

// Config represents the application configuration for a rota allocation run.
type Config struct {
	DefaultShiftSize       int            `yaml:"defaultShiftSize" validate:"min=0"`
	MaxAllocationFrequency float64        `yaml:"maxAllocationFrequency" validate:"gt=0,lte=1"`
	RotaOverrides          []RotaOverride `yaml:"rotaOverrides,omitempty" validate:"dive"`

	CriteriaWeights struct {
		ShiftSize      CriterionWeights `yaml:"shiftSize,omitempty"`
		TeamLead       CriterionWeights `yaml:"teamLead,omitempty"`
		MaleBalance    CriterionWeights `yaml:"maleBalance,omitempty"`
		NoDoubleShifts CriterionWeights `yaml:"noDoubleShifts,omitempty"`
		ShiftSpread    CriterionWeights `yaml:"shiftSpread,omitempty"`
	} `yaml:"criteriaWeights,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration with an environment
// suffix. For example, env="test" looks for "rota_config.test.yaml".
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, override := range cfg.RotaOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in rotaOverrides[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for a config file in the current directory, then
// the home directory. If env is non-empty it is added as an extension
// (e.g. "rota_config.test.yaml").
func findConfigFile(env string) (string, error) {
	configFileName := "rota_config.yaml"
	if env != "" {
		configFileName = "rota_config." + env + ".yaml"
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
