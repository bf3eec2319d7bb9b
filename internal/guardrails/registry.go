package guardrails

import (
	"regexp"
)

// Detector names, one per guarded stage.
const (
	WetLab         = "wetlab"
	Bioinformatics = "bioinformatics"
	Analysis       = "analysis"
)

// WetLabDetector flags operational specificity in protocol text: concrete temperatures,
// volumes, timings and step-by-step procedural language.
var WetLabDetector = &Detector{
	Name: WetLab,
	Groups: []Group{
		single("temperature",
			`(?i)\b\d+\s*°?[CF]\b|\b\d+\s+degrees?\b`,
			"Contains specific temperature values (should be conceptual only)"),
		single("volume",
			`\b\d+\s*[µμu]?[LlmM][Ll]?\b`,
			"Contains specific volume measurements (should be conceptual only)"),
		single("timing",
			`(?i)\b\d+\s*(min|minutes?|hrs?|hours?|sec|seconds?)\b`,
			"Contains specific timing instructions (should be conceptual only)"),
		{
			Name:           "procedural",
			FirstMatchOnly: true,
			Rules: procedural(
				`(?i)\bstep \d+|\b(first|second|then|next|finally),`,
				`(?i)\badd \d+`,
				`(?i)\bmix for \d+`,
				`(?i)\bincubate (at|for)\b`,
			),
		},
	},
	Policy: TierPolicy{HighAbove: 2},
	Summary: Summary{
		Low:    "No guardrail violations detected",
		Medium: "Minor violations detected (%d issues)",
		High:   "Multiple violations detected (%d issues) - output may be too actionable",
	},
}

// BioinformaticsDetector flags execution idioms in generated pipeline code.
var BioinformaticsDetector = &Detector{
	Name: Bioinformatics,
	Groups: []Group{
		single("subprocess",
			`subprocess\.(run|call|Popen|check_output)`,
			"Contains subprocess execution (Python)"),
		{
			Name:           "shell",
			FirstMatchOnly: true,
			Rules: []Rule{
				shell(`\$\(.*?\)`, "command substitution $(...)"),
				shell("`[^`\n]+`", "backtick command substitution"),
				shell(`\bexec\s+`, "exec"),
				shell(`\beval\s+`, "eval"),
			},
		},
		single("container",
			`\bdocker (run|exec|start)\b`,
			"Contains Docker execution command"),
		{
			Name:           "install",
			FirstMatchOnly: true,
			Rules: []Rule{
				install(`!pip install`),
				install(`pip install`),
				install(`conda install`),
				install(`apt-get install`),
				install(`yum install`),
			},
		},
	},
	Policy: TierPolicy{HighAbove: 2},
	Summary: Summary{
		Low:    "No execution commands detected",
		Medium: "Some execution patterns detected (%d issues)",
		High:   "Multiple execution commands detected (%d issues)",
	},
}

// AnalysisDetector flags system calls, package installation and destructive file
// operations in generated R code. It has no high tier.
var AnalysisDetector = &Detector{
	Name: Analysis,
	Groups: []Group{
		single("system_call",
			`\bsystem\(|system2\(`,
			"Contains R system() calls"),
		{
			Name:           "install",
			FirstMatchOnly: true,
			Rules: []Rule{
				rInstall(`install\.packages\(`),
				rInstall(`BiocManager::install\(`),
				rInstall(`devtools::install`),
				rInstall(`remotes::install`),
			},
		},
		{
			Name: "filesystem",
			Rules: []Rule{
				filesystem(`\bfile\.remove\(`, "file.remove("),
				filesystem(`\bunlink\(`, "unlink("),
				filesystem(`\bsystem\.file\(`, "system.file("),
			},
		},
	},
	Summary: Summary{
		Low:    "No execution commands detected",
		Medium: "Execution patterns detected (%d issues)",
	},
}

var detectors = map[string]*Detector{
	WetLab:         WetLabDetector,
	Bioinformatics: BioinformaticsDetector,
	Analysis:       AnalysisDetector,
}

// Lookup returns the registered detector by name.
func Lookup(name string) (*Detector, bool) {
	d, ok := detectors[name]
	return d, ok
}

func procedural(patterns ...string) []Rule {
	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, Rule{
			Category: "procedural",
			Pattern:  regexp.MustCompile(p),
			Message:  "Contains step-by-step procedural instructions (should be protocol references only)",
		})
	}
	return rules
}

func shell(pattern string, label string) Rule {
	return Rule{
		Category: "shell",
		Pattern:  regexp.MustCompile(pattern),
		Message:  "Contains shell execution pattern: " + label,
	}
}

func install(command string) Rule {
	return Rule{
		Category: "install",
		Pattern:  regexp.MustCompile(regexp.QuoteMeta(command)),
		Message:  "Contains package installation command: " + command,
	}
}

func rInstall(pattern string) Rule {
	return Rule{
		Category: "install",
		Pattern:  regexp.MustCompile(pattern),
		Message:  "Contains package installation command (R)",
	}
}

func filesystem(pattern string, label string) Rule {
	return Rule{
		Category: "filesystem",
		Pattern:  regexp.MustCompile(pattern),
		Message:  "Contains file system manipulation: " + label,
	}
}
