package privacy

import (
	"context"
	"fmt"
	"regexp"
)

// regexPatterns covers the entity classes detectable without a model:
// contact details, network identifiers, and common account numbers.
var regexPatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{"EMAIL_ADDRESS", regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)},
	{"PHONE_NUMBER", regexp.MustCompile(`\+?\d{1,3}[\s.\-]?\(?\d{2,4}\)?[\s.\-]?\d{3,4}[\s.\-]?\d{3,4}`)},
	{"SSN", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"CREDIT_CARD", regexp.MustCompile(`\b(?:\d[ \-]?){13,16}\b`)},
	{"IP_ADDRESS", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{"URL", regexp.MustCompile(`https?://[^\s]+`)},
}

// RegexScrubber redacts a fixed set of entity patterns without an external
// provider. Coverage is far narrower than a deid API; it exists so the scrub
// workflow stays usable in development and air-gapped deployments.
type RegexScrubber struct{}

// NewRegexScrubber returns the pattern-based scrubber.
func NewRegexScrubber() *RegexScrubber {
	return &RegexScrubber{}
}

// Name identifies the provider.
func (s *RegexScrubber) Name() string { return "REGEX" }

// ScrubText replaces each detected entity with a numbered marker, numbered
// in detection order per entity class.
func (s *RegexScrubber) ScrubText(_ context.Context, text string) (string, error) {
	for _, p := range regexPatterns {
		n := 0
		text = p.re.ReplaceAllStringFunc(text, func(string) string {
			n++
			return fmt.Sprintf("[%s_%d]", p.label, n)
		})
	}
	return text, nil
}
