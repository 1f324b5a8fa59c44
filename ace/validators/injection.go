package validators

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/Nuntissura/Handshake-sub002/ace"
)

// InjectionPatternSetVersion is bumped whenever a pattern is added to
// DefaultInjectionPatterns. The spec fixes the four patterns below as a
// floor: implementations may add but never remove patterns, and any
// addition must be reflected in the flight-recorder event schema version
// (§9 open question).
const InjectionPatternSetVersion = 1

// DefaultInjectionPatterns is the minimum, non-exhaustive pattern set this
// spec requires every deployment to reject on.
var DefaultInjectionPatterns = []string{
	"ignore previous",
	"new instructions",
	"system command",
	"developer mode",
}

var foldCaser = cases.Fold()

// PromptInjection scans every retrieved snippet, NFC-normalized and
// case-folded, against DefaultInjectionPatterns. A match is
// non-recoverable locally: the caller is contractually required to
// transition the enclosing job to Poisoned (§4.2, boundary scenario S3).
type PromptInjection struct {
	Patterns []string
}

// NewPromptInjection constructs the guard with the default pattern set.
func NewPromptInjection() PromptInjection {
	return PromptInjection{Patterns: DefaultInjectionPatterns}
}

func (PromptInjection) Name() string { return "prompt_injection" }

func (PromptInjection) ValidatePlan(*ace.QueryPlan) error { return nil }

func (g PromptInjection) ValidateTrace(_ *ace.QueryPlan, trace *ace.RetrievalTrace) error {
	patterns := g.Patterns
	if patterns == nil {
		patterns = DefaultInjectionPatterns
	}
	for _, span := range trace.Spans {
		normalized := normalizeForScan(span.Text)
		for _, p := range patterns {
			if strings.Contains(normalized, normalizeForScan(p)) {
				return ace.NewPromptInjectionDetected(p)
			}
		}
	}
	return nil
}

// normalizeForScan applies NFC normalization followed by Unicode case
// folding, matching the scan basis required by §4.2's PromptInjection
// contract and Testable Property 8.
func normalizeForScan(s string) string {
	return foldCaser.String(norm.NFC.String(s))
}
