// Package roles holds the fixed catalogue of job roles a user can search for
// and the normalization that turns a role label into a search keyword.
package roles

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Labels is the selectable role list, in display order.
var Labels = []string{
	"Full Stack Engineer",
	"Data Scientist",
	"Designer",
	"Software Architect",
	"DevOps Engineer",
	"Software Engineer",
	"Engineering Manager",
	"Artificial Intelligence Engineer",
	"Machine Learning Engineer",
	"Product Manager",
	"Backend Engineer",
	"Mobile Engineer",
	"Product Designer",
	"Frontend Engineer",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize converts a label into its keyword form: surrounding whitespace is
// dropped, inner whitespace runs become a single hyphen and the result is
// lowercased. Normalize is idempotent, so already-normalized keywords pass
// through unchanged.
func Normalize(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}
	return cases.Lower(language.Und).String(whitespaceRun.ReplaceAllString(trimmed, "-"))
}

// Option is one entry of the role selector.
type Option struct {
	Label   string `json:"label"`
	Keyword string `json:"keyword"`
}

// Options returns the selector entries for Labels.
func Options() []Option {
	opts := make([]Option, 0, len(Labels))
	for _, label := range Labels {
		opts = append(opts, Option{Label: label, Keyword: Normalize(label)})
	}
	return opts
}

var known = func() map[string]string {
	m := make(map[string]string, len(Labels))
	for _, label := range Labels {
		m[Normalize(label)] = label
	}
	return m
}()

// Known reports whether keyword is the normalized form of a catalogued role.
func Known(keyword string) bool {
	_, ok := known[keyword]
	return ok
}

// Label returns the display label for a normalized keyword.
func Label(keyword string) (string, bool) {
	label, ok := known[keyword]
	return label, ok
}
