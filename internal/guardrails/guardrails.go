package guardrails

import (
	"fmt"
	"regexp"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
)

// Rule is one registry entry: a category label, the compiled pattern and the
// violation text reported when the pattern matches.
type Rule struct {
	Category string
	Pattern  *regexp.Regexp
	Message  string
}

// Group evaluates its rules in order. With FirstMatchOnly the group contributes at most
// one violation; otherwise every matching rule contributes its own.
type Group struct {
	Name           string
	Rules          []Rule
	FirstMatchOnly bool
}

// TierPolicy maps a violation count to a risk tier. HighAbove <= 0 disables the high tier.
type TierPolicy struct {
	HighAbove int
}

func (p TierPolicy) Tier(violations int) models.RiskTier {
	switch {
	case violations == 0:
		return models.RiskLow
	case p.HighAbove > 0 && violations > p.HighAbove:
		return models.RiskHigh
	default:
		return models.RiskMedium
	}
}

// Summary holds the one-line messages per tier. Medium and High take the violation count.
type Summary struct {
	Low    string
	Medium string
	High   string
}

type Detector struct {
	Name    string
	Groups  []Group
	Policy  TierPolicy
	Summary Summary
}

// Check classifies text against every group of the detector.
func (d *Detector) Check(text string) models.GuardrailReport {
	violations := d.Violations(text)

	tier := d.Policy.Tier(len(violations))
	var message string
	switch tier {
	case models.RiskLow:
		message = d.Summary.Low
	case models.RiskHigh:
		message = fmt.Sprintf(d.Summary.High, len(violations))
	default:
		message = fmt.Sprintf(d.Summary.Medium, len(violations))
	}

	return models.GuardrailReport{
		Violations: violations,
		RiskTier:   tier,
		Message:    message,
	}
}

// Violations returns the ordered violation descriptions for text.
func (d *Detector) Violations(text string) []string {
	violations := []string{}
	for _, group := range d.Groups {
		for _, rule := range group.Rules {
			if !rule.Pattern.MatchString(text) {
				continue
			}
			violations = append(violations, rule.Message)
			if group.FirstMatchOnly {
				break
			}
		}
	}
	return violations
}

func single(category string, pattern string, message string) Group {
	return Group{
		Name:  category,
		Rules: []Rule{{Category: category, Pattern: regexp.MustCompile(pattern), Message: message}},
	}
}
