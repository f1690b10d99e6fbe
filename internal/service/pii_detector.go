package service

import (
	"regexp"
	"sort"
	"strings"
)

// RedactedToken replaces every PII match in public comment bodies
const RedactedToken = "[REDACTED]"

// piiPattern pairs a category name with its matcher. Order is fixed and
// determines the order of PIIResult.Types.
type piiPattern struct {
	name    string
	pattern *regexp.Regexp
}

var piiPatterns = []piiPattern{
	{"phone", regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)},
	{"email", regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)},
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b|\b\d{9}\b`)},
	{"credit_card", regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)},
	{"address", regexp.MustCompile(`(?i)\d+\s+[A-Za-z]+\s+(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Circle|Cir|Plaza|Pl)\b`)},
	{"drivers_license", regexp.MustCompile(`\b[A-Z]\d{7,8}\b`)},
}

// PIIResult is the outcome of a PII scan. Types lists the pattern
// categories that fired, not individual matches.
type PIIResult struct {
	RedactedText string
	Detected     bool
	Types        []string
}

// PIIDetector scans text for regulated personal data patterns and
// redacts matches. It never fails; no matches is the normal case.
type PIIDetector struct{}

// NewPIIDetector creates a new PIIDetector
func NewPIIDetector() *PIIDetector {
	return &PIIDetector{}
}

// span is a half-open [start, end) byte range in the original text
type span struct {
	start, end int
}

// Detect applies every pattern to the original text independently,
// merges overlapping match ranges, and produces the redacted text in a
// single pass. Later patterns never see partially-redacted text, so
// results cannot depend on pattern order.
func (d *PIIDetector) Detect(text string) PIIResult {
	var spans []span
	var types []string

	for _, p := range piiPatterns {
		matches := p.pattern.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		types = append(types, p.name)
		for _, m := range matches {
			spans = append(spans, span{m[0], m[1]})
		}
	}

	if len(spans) == 0 {
		return PIIResult{RedactedText: text}
	}

	merged := mergeSpans(spans)

	var b strings.Builder
	prev := 0
	for _, s := range merged {
		b.WriteString(text[prev:s.start])
		b.WriteString(RedactedToken)
		prev = s.end
	}
	b.WriteString(text[prev:])

	return PIIResult{
		RedactedText: b.String(),
		Detected:     true,
		Types:        types,
	}
}

// mergeSpans sorts spans by start and coalesces overlapping ranges so
// that adjacent pattern hits collapse into one redaction token.
func mergeSpans(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
