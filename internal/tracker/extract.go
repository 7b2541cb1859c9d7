package tracker

import (
	"regexp"
	"strconv"
)

// issueURLPattern matches GitHub issue URLs, including ones wrapped in
// Slack's <url|label> markup.
var issueURLPattern = regexp.MustCompile(`github\.com/([\w.-]+)/([\w.-]+)/issues/(\d+)`)

// shortRefPattern matches bare "#123" tokens, as in "fixes #42".
var shortRefPattern = regexp.MustCompile(`(?:^|[\s(])#(\d+)\b`)

// Extractor parses free text for an embedded issue reference. Bare "#123"
// tokens are attributed to the configured repository; full URLs carry their
// own repository.
type Extractor struct {
	repo string
}

// NewExtractor creates an extractor that resolves bare issue numbers
// against repo ("owner/name").
func NewExtractor(repo string) *Extractor {
	return &Extractor{repo: repo}
}

// Extract returns the first issue reference found in text. Absence is the
// common case and is not an error: the second return value is false and the
// caller skips the thread.
func (e *Extractor) Extract(text string) (Ref, bool) {
	if m := issueURLPattern.FindStringSubmatch(text); m != nil {
		number, err := strconv.Atoi(m[3])
		if err == nil && number > 0 {
			return Ref{Repo: m[1] + "/" + m[2], Number: number}, true
		}
	}

	if e.repo != "" {
		if m := shortRefPattern.FindStringSubmatch(text); m != nil {
			number, err := strconv.Atoi(m[1])
			if err == nil && number > 0 {
				return Ref{Repo: e.repo, Number: number}, true
			}
		}
	}

	return Ref{}, false
}
