package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

var ErrMissingPrompt = errors.New("missing stage prompt")

const defaultStagesConfigPath = "configs/stages.yaml"

func LoadStagesConfig() (*StagesConfig, error) {
	path := os.Getenv("STAGES_CONFIG_PATH")
	if path == "" {
		path = defaultStagesConfigPath
	}

	return LoadStagesConfigFile(path)
}

func LoadStagesConfigFile(path string) (*StagesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read stages config %s: %w", path, err)
	}

	var cfg StagesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse stages config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *StagesConfig) Validate() error {
	seen := map[string]bool{}
	for i, def := range c.Stages.Definitions {
		if strings.TrimSpace(def.Name) == "" {
			return fmt.Errorf("stage definition %d has no name", i)
		}
		if seen[def.Name] {
			return fmt.Errorf("stage %s is defined more than once", def.Name)
		}
		seen[def.Name] = true

		if strings.TrimSpace(def.SystemPrompt) == "" || strings.TrimSpace(def.UserPrompt) == "" {
			return fmt.Errorf("stage %s: %w", def.Name, ErrMissingPrompt)
		}
		if def.Model.MaxTokens < 0 {
			return fmt.Errorf("stage %s: max_tokens must not be negative", def.Name)
		}
	}
	return nil
}

// Definition returns the configuration of the named stage.
func (c *StagesConfig) Definition(name string) (StageConfiguration, bool) {
	for _, def := range c.Stages.Definitions {
		if def.Name == name {
			return def, true
		}
	}
	return StageConfiguration{}, false
}

// Resolve layers the global default model and the stage override over the built-in
// parameters of a stage.
func (c *StagesConfig) Resolve(def StageConfiguration, maxTokens int, temperature float64) (int, float64) {
	for _, params := range []ModelParams{c.Stages.DefaultModel, def.Model} {
		if params.MaxTokens > 0 {
			maxTokens = params.MaxTokens
		}
		if params.Temperature != nil {
			temperature = *params.Temperature
		}
	}
	return maxTokens, temperature
}
