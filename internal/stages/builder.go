package stages

import (
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/config"
	"github.com/rs/zerolog"
)

// Build assembles the ordered stage list from the built-in catalog and the prompt
// configuration. Every stage must have prompts, and every user prompt must carry its
// placeholder.
func Build(cfg *config.StagesConfig, logger *zerolog.Logger) ([]*Stage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("stages config is nil")
	}

	stages := make([]*Stage, 0, len(catalog))
	for i, def := range catalog {
		stageCfg, ok := cfg.Definition(def.name)
		if !ok {
			return nil, fmt.Errorf("stage %s: %w", def.name, config.ErrMissingPrompt)
		}
		if !strings.Contains(stageCfg.UserPrompt, def.placeholder) {
			return nil, fmt.Errorf("stage %s: user prompt does not contain placeholder %s", def.name, def.placeholder)
		}

		maxTokens, temperature := cfg.Resolve(stageCfg, def.maxTokens, def.temperature)

		stages = append(stages, &Stage{
			Name:         def.name,
			Index:        i + 1,
			SystemPrompt: stageCfg.SystemPrompt,
			UserTemplate: stageCfg.UserPrompt,
			Placeholder:  def.placeholder,
			Temperature:  temperature,
			MaxTokens:    maxTokens,
			Mode:         def.mode,
			Extractor:    def.extractor,
			Schema:       def.schema,
			Detector:     def.detector,
		})

		logger.Info().
			Str("stage", def.name).
			Int("index", i+1).
			Int("max_tokens", maxTokens).
			Float64("temperature", temperature).
			Str("mode", string(def.mode)).
			Bool("guarded", def.detector != nil).
			Msg("stage configured")
	}

	return stages, nil
}
