package config

// StagesConfig is the complete workflow stage configuration
type StagesConfig struct {
	Stages StagesSection `yaml:"stages"`
}

// StagesSection holds shared model parameters and the per-stage prompt definitions
type StagesSection struct {
	DefaultModel ModelParams          `yaml:"default_model"`
	Definitions  []StageConfiguration `yaml:"definitions"`
}

// StageConfiguration carries the prompts for one stage and an optional model override
type StageConfiguration struct {
	Name         string      `yaml:"name"`
	Description  string      `yaml:"description"`
	SystemPrompt string      `yaml:"system_prompt"`
	UserPrompt   string      `yaml:"user_prompt"`
	Model        ModelParams `yaml:"model"`
}

// ModelParams are optional sampling overrides. Unset values fall back to the next layer.
type ModelParams struct {
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
}
