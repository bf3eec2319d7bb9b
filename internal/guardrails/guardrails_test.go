package guardrails

import (
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
)

func TestWetLabDetector(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		violations int
		tier       models.RiskTier
	}{
		{
			name:       "Conceptual protocol",
			text:       "Use a validated extraction kit and store samples cold until processing.",
			violations: 0,
			tier:       models.RiskLow,
		},
		{
			name:       "Temperature, volume, timing and procedure",
			text:       "Incubate at 37°C for 30 minutes with 250 µL",
			violations: 4,
			tier:       models.RiskHigh,
		},
		{
			name:       "Temperature only",
			text:       "Keep samples at 4 degrees during transport.",
			violations: 1,
			tier:       models.RiskMedium,
		},
		{
			name:       "Timing and ordinal marker",
			text:       "First, homogenize the sample. Settle for 2 hours.",
			violations: 2,
			tier:       models.RiskMedium,
		},
		{
			name:       "Procedural group reports once",
			text:       "Step 1 add 5 tubes, then mix for 10 rounds",
			violations: 1,
			tier:       models.RiskMedium,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			report := WetLabDetector.Check(test.text)
			if len(report.Violations) != test.violations {
				t.Errorf("Violations: %d (%v), want: %d", len(report.Violations), report.Violations, test.violations)
			}
			if report.RiskTier != test.tier {
				t.Errorf("RiskTier: %s, want: %s", report.RiskTier, test.tier)
			}
			if report.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestWetLabDetector_ReportsCategoriesInOrder(t *testing.T) {
	report := WetLabDetector.Check("Incubate at 37°C for 30 minutes with 250 µL")

	if len(report.Violations) < 3 {
		t.Fatalf("expected at least 3 violations, got %v", report.Violations)
	}
	for i, want := range []string{"temperature", "volume", "timing"} {
		if !strings.Contains(report.Violations[i], want) {
			t.Errorf("violation %d = %q, want it to mention %s", i, report.Violations[i], want)
		}
	}
	if !strings.HasPrefix(report.Message, "Multiple violations detected (4 issues)") {
		t.Errorf("unexpected message %q", report.Message)
	}
}

func TestBioinformaticsDetector(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		violations int
		tier       models.RiskTier
	}{
		{
			name:       "Clean config",
			text:       "```yaml\nthreads: 8\nassembler: megahit\n```",
			violations: 0,
			tier:       models.RiskLow,
		},
		{
			name:       "Subprocess call",
			text:       "result = subprocess.run(cmd)",
			violations: 1,
			tier:       models.RiskMedium,
		},
		{
			name:       "Shell group reports once",
			text:       "SAMPLES=$(ls reads) && eval $CMD && exec bash",
			violations: 1,
			tier:       models.RiskMedium,
		},
		{
			name:       "Install group reports once",
			text:       "conda install kraken2\npip install pandas",
			violations: 1,
			tier:       models.RiskMedium,
		},
		{
			name:       "Everything",
			text:       "subprocess.call(x)\nDATE=$(date)\ndocker run image\napt-get install curl",
			violations: 4,
			tier:       models.RiskHigh,
		},
		{
			name:       "Fence markers are not substitutions",
			text:       "```bash\nfastp -i in.fq -o out.fq\n```",
			violations: 0,
			tier:       models.RiskLow,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			report := BioinformaticsDetector.Check(test.text)
			if len(report.Violations) != test.violations {
				t.Errorf("Violations: %d (%v), want: %d", len(report.Violations), report.Violations, test.violations)
			}
			if report.RiskTier != test.tier {
				t.Errorf("RiskTier: %s, want: %s", report.RiskTier, test.tier)
			}
		})
	}
}

func TestAnalysisDetector(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		violations int
		tier       models.RiskTier
	}{
		{
			name:       "Read-only analysis",
			text:       "library(vegan)\nres <- adonis2(dist ~ site, data = meta)",
			violations: 0,
			tier:       models.RiskLow,
		},
		{
			name:       "System call",
			text:       "system(\"ls\")",
			violations: 1,
			tier:       models.RiskMedium,
		},
		{
			name:       "Install group reports once",
			text:       "install.packages(\"vegan\")\nBiocManager::install(\"DESeq2\")",
			violations: 1,
			tier:       models.RiskMedium,
		},
		{
			name:       "Filesystem patterns each count and never reach high",
			text:       "file.remove(x)\nunlink(tmp)\nsystem.file(\"extdata\")\nsystem2(\"rm\")",
			violations: 4,
			tier:       models.RiskMedium,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			report := AnalysisDetector.Check(test.text)
			if len(report.Violations) != test.violations {
				t.Errorf("Violations: %d (%v), want: %d", len(report.Violations), report.Violations, test.violations)
			}
			if report.RiskTier != test.tier {
				t.Errorf("RiskTier: %s, want: %s", report.RiskTier, test.tier)
			}
		})
	}
}

func TestTierPolicy(t *testing.T) {
	bounded := TierPolicy{HighAbove: 2}
	unbounded := TierPolicy{}

	cases := []struct {
		count     int
		bounded   models.RiskTier
		unbounded models.RiskTier
	}{
		{0, models.RiskLow, models.RiskLow},
		{1, models.RiskMedium, models.RiskMedium},
		{2, models.RiskMedium, models.RiskMedium},
		{3, models.RiskHigh, models.RiskMedium},
		{10, models.RiskHigh, models.RiskMedium},
	}

	for _, c := range cases {
		if got := bounded.Tier(c.count); got != c.bounded {
			t.Errorf("bounded.Tier(%d) = %s, want %s", c.count, got, c.bounded)
		}
		if got := unbounded.Tier(c.count); got != c.unbounded {
			t.Errorf("unbounded.Tier(%d) = %s, want %s", c.count, got, c.unbounded)
		}
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{WetLab, Bioinformatics, Analysis} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("detector %s not registered", name)
		}
	}
	if _, ok := Lookup("unknown"); ok {
		t.Error("unexpected detector for unknown name")
	}
}

func TestSanitize(t *testing.T) {
	text := "protocol body"

	high := WetLabDetector.Check("Incubate at 37°C for 30 minutes with 250 µL")
	sanitized := Sanitize(text, &high)
	if !strings.HasSuffix(sanitized, text) {
		t.Errorf("sanitized text should end with original text, got %q", sanitized)
	}
	if !strings.Contains(sanitized, "WARNING: Guardrail violations detected") {
		t.Errorf("missing warning header in %q", sanitized)
	}

	medium := WetLabDetector.Check("Keep at 4 degrees")
	if got := Sanitize(text, &medium); got != text {
		t.Errorf("medium tier should not be sanitized, got %q", got)
	}
	if got := Sanitize(text, nil); got != text {
		t.Errorf("nil report should not be sanitized, got %q", got)
	}
}
