package stages

import (
	"strconv"
	"strings"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/extract"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/guardrails"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/validator"
)

const (
	SamplingDesign         = "sampling_design"
	WetLabProtocol         = "wetlab_protocol"
	BioinformaticsPipeline = "bioinformatics_pipeline"
	StatisticalAnalysis    = "statistical_analysis"
)

// definition is the built-in part of a stage; prompts come from configuration.
type definition struct {
	name        string
	placeholder string
	temperature float64
	maxTokens   int
	mode        extract.Mode
	extractor   extract.Extractor
	schema      validator.Schema
	detector    *guardrails.Detector
}

var catalog = []definition{
	{
		name:        SamplingDesign,
		placeholder: "###USER_QUERY###",
		temperature: 0.3,
		maxTokens:   4000,
		mode:        extract.ModeJSON,
		extractor:   extract.NewJSONExtractor(),
		schema: validator.Schema{
			Keys: []string{"hypotheses", "sampling_design", "metadata_requirements", "qc_strategy", "handoff_to_wetlab"},
			AnyOf: &validator.AnyOf{
				Key:          "sampling_design",
				Alternatives: []string{"spatial_design", "temporal_design"},
				Message:      "sampling_design should include spatial_design or temporal_design",
			},
		},
	},
	{
		name:        WetLabProtocol,
		placeholder: "###SAMPLING_OUTPUT###",
		temperature: 0.3,
		maxTokens:   5000,
		mode:        extract.ModeJSON,
		extractor:   extract.NewJSONExtractor(),
		schema: validator.Schema{
			Keys: []string{"sample_collection_preservation", "extraction", "library_prep", "sequencing", "handoff_to_bioinformatics"},
		},
		detector: guardrails.WetLabDetector,
	},
	{
		name:        BioinformaticsPipeline,
		placeholder: "###WETLAB_OUTPUT###",
		temperature: 0.2,
		maxTokens:   6000,
		mode:        extract.ModeSections,
		extractor:   extract.NewSectionExtractor(extract.BioinformaticsRules),
		schema: validator.Schema{
			Keys:     []string{extract.PipelineScript, extract.ConfigYAML, extract.SetupScript, extract.Readme, extract.HandoffYAML},
			Sections: true,
		},
		detector: guardrails.BioinformaticsDetector,
	},
	{
		name:        StatisticalAnalysis,
		placeholder: "###BIOINFO_OUTPUT###",
		temperature: 0.2,
		maxTokens:   6000,
		mode:        extract.ModeSections,
		extractor:   extract.NewSectionExtractor(extract.AnalysisRules),
		schema: validator.Schema{
			Keys:     []string{extract.RmdScript, extract.HelperFunctions, extract.WorkflowDoc},
			Sections: true,
		},
		detector: guardrails.AnalysisDetector,
	},
}

// Names lists the stage names in execution order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, def := range catalog {
		names = append(names, def.name)
	}
	return names
}

// ParseIndex resolves a stage reference to its 1-based index. It accepts the stage name,
// the a1..a4 shorthand and the bare number.
func ParseIndex(ref string) (int, bool) {
	ref = strings.ToLower(strings.TrimSpace(ref))

	for i, def := range catalog {
		if ref == def.name {
			return i + 1, true
		}
	}

	n, err := strconv.Atoi(strings.TrimPrefix(ref, "a"))
	if err != nil || n < 1 || n > len(catalog) {
		return 0, false
	}
	return n, true
}
