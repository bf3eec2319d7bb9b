package extract

import "strings"

// Section names produced for the bioinformatics stage.
const (
	PipelineScript = "pipeline_script"
	ConfigYAML     = "config_yaml"
	SetupScript    = "setup_script"
	Readme         = "readme"
	HandoffYAML    = "handoff_yaml"
)

// Section names produced for the analysis stage.
const (
	RmdScript       = "rmd_script"
	HelperFunctions = "helper_functions"
	WorkflowDoc     = "workflow_doc"
)

// BioinformaticsRules classifies pipeline, config, setup, readme and handoff blocks.
// Rules are tried in order, so a bash or yaml block never reaches the setup rule.
var BioinformaticsRules = []BlockRule{
	{
		Name:    "pipeline-filename",
		Match:   prefixContains("pipeline.sh"),
		Section: PipelineScript,
	},
	{
		Name:    "bash",
		Match:   langContains("bash"),
		Section: PipelineScript,
	},
	{
		Name: "handoff-yaml",
		Match: func(b Block) bool {
			return isYAML(b) && strings.Contains(b.Prefix, "data_handoff")
		},
		Section: HandoffYAML,
	},
	{
		Name:    "config-yaml",
		Match:   isYAML,
		Section: ConfigYAML,
	},
	{
		Name: "setup-database",
		Match: func(b Block) bool {
			return strings.Contains(b.Prefix, "setup") && strings.Contains(b.Prefix, "database")
		},
		Section: SetupScript,
	},
	{
		Name: "readme",
		Match: func(b Block) bool {
			return strings.Contains(b.Prefix, "readme") || b.Lang == "markdown"
		},
		Section: Readme,
	},
}

// AnalysisRules classifies R Markdown, helper and workflow documentation blocks. The
// first plain R block is the analysis script and the next one holds the helpers.
var AnalysisRules = []BlockRule{
	{
		Name: "rmarkdown",
		Match: func(b Block) bool {
			return strings.Contains(b.Prefix, "analysis.rmd") || strings.Contains(b.Lang, "rmarkdown")
		},
		Section: RmdScript,
	},
	{
		Name: "r",
		Match: func(b Block) bool {
			return strings.Contains(b.Prefix, "helpers.r") || b.Lang == "r"
		},
		Section:  RmdScript,
		Overflow: HelperFunctions,
	},
	{
		Name:    "markdown",
		Match:   func(b Block) bool { return b.Lang == "markdown" },
		Section: WorkflowDoc,
	},
}

func prefixContains(marker string) func(Block) bool {
	return func(b Block) bool {
		return strings.Contains(b.Prefix, marker)
	}
}

func langContains(marker string) func(Block) bool {
	return func(b Block) bool {
		return strings.Contains(b.Lang, marker)
	}
}

func isYAML(b Block) bool {
	return strings.Contains(b.Prefix, "config.yaml") ||
		strings.Contains(b.Lang, "yaml") ||
		strings.Contains(b.Lang, "yml")
}
