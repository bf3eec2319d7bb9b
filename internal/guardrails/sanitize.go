package guardrails

import (
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
)

// Sanitize prefixes high-risk text with a warning comment block. Other tiers are returned
// unchanged.
func Sanitize(text string, report *models.GuardrailReport) string {
	if report == nil || report.RiskTier != models.RiskHigh {
		return text
	}

	var b strings.Builder
	b.WriteString("\n\n<!-- WARNING: Guardrail violations detected -->\n")
	fmt.Fprintf(&b, "<!-- %s -->\n", report.Message)
	fmt.Fprintf(&b, "<!-- Violations: %s -->\n\n", strings.Join(report.Violations, ", "))
	b.WriteString(text)
	return b.String()
}
