// Package textnorm cleans raw social-media text into the canonical form the
// classifier was trained on.
package textnorm

import (
	"regexp"
	"strings"
)

// Placeholder tokens substituted for content the model should not see verbatim.
const (
	URLToken     = "urltoken"
	MentionToken = "usertoken"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	urlPattern     = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	mentionPattern = regexp.MustCompile(`@[a-zA-Z0-9_]+`)
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	bangRun        = regexp.MustCompile(`!{2,}`)
	questionRun    = regexp.MustCompile(`\?{2,}`)
	dotRun         = regexp.MustCompile(`\.{2,}`)
	disallowed     = regexp.MustCompile(`[^a-z0-9 !?.,]`)
)

// collapseRuns caps any rune repeated 3 or more times consecutively at
// two occurrences ("soooo" becomes "soo").
func collapseRuns(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run <= 2 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize applies the cleaning pipeline used at training time. The step
// order is load-bearing: repeated-character collapsing runs after punctuation
// handling so it is not undone by the character filter.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(raw)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = urlPattern.ReplaceAllString(s, URLToken)
	s = mentionPattern.ReplaceAllString(s, MentionToken)
	s = hashtagPattern.ReplaceAllString(s, "$1")
	s = bangRun.ReplaceAllString(s, "!")
	s = questionRun.ReplaceAllString(s, "?")
	s = dotRun.ReplaceAllString(s, "...")
	s = disallowed.ReplaceAllString(s, " ")
	s = collapseRuns(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Tokens splits normalized text into lowercase alphanumeric tokens,
// preserving occurrence order.
func Tokens(normalized string) []string {
	return tokenPattern.FindAllString(normalized, -1)
}

// TokenSet returns the distinct tokens of normalized text. Duplicate
// occurrences within one text count once.
func TokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokens(normalized) {
		set[t] = struct{}{}
	}
	return set
}
