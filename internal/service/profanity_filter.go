package service

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// RemovedToken replaces every blocklist match in public comment bodies
const RemovedToken = "[REMOVED]"

// defaultBlocklist seeds the filter when no blocklist file is
// configured. Deployments extend it via the moderation config.
var defaultBlocklist = []string{
	"idiot",
	"moron",
	"stupid",
	"dumbass",
	"jackass",
	"scumbag",
	"bastard",
	"crap",
	"damn",
	"hell",
}

// ProfanityResult is the outcome of a blocklist scan
type ProfanityResult struct {
	Detected    bool
	CleanedText string
}

// ProfanityFilter masks blocklisted terms in comment text.
// Matching is case-insensitive and word-boundary bounded, so terms
// embedded inside longer words are left alone. Filtering already-clean
// text is a no-op, which makes the filter idempotent.
type ProfanityFilter struct {
	patterns []*regexp.Regexp
}

// NewProfanityFilter creates a filter over the given blocklist.
// An empty blocklist falls back to the built-in default.
func NewProfanityFilter(blocklist []string) *ProfanityFilter {
	if len(blocklist) == 0 {
		blocklist = defaultBlocklist
	}
	patterns := make([]*regexp.Regexp, 0, len(blocklist))
	for _, word := range blocklist {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return &ProfanityFilter{patterns: patterns}
}

// NewProfanityFilterFromFile loads a blocklist file (one term per line,
// '#' comments allowed). A missing or empty file yields the default list.
func NewProfanityFilterFromFile(path string) (*ProfanityFilter, error) {
	if path == "" {
		return NewProfanityFilter(nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewProfanityFilter(words), nil
}

// Filter masks every blocklist match in text with the removed token
func (f *ProfanityFilter) Filter(text string) ProfanityResult {
	cleaned := text
	detected := false

	for _, p := range f.patterns {
		if p.MatchString(cleaned) {
			detected = true
			cleaned = p.ReplaceAllString(cleaned, RemovedToken)
		}
	}

	return ProfanityResult{
		Detected:    detected,
		CleanedText: cleaned,
	}
}
