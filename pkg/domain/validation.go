package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationResult maps a field name to a human-readable error.
// An empty result means the validated fields are valid.
type ValidationResult map[string]string

// Valid reports whether the result holds no errors.
func (r ValidationResult) Valid() bool {
	return len(r) == 0
}

// Fields returns the names of the invalid fields in sorted order.
func (r ValidationResult) Fields() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidationError wraps a non-empty ValidationResult for a named step.
type ValidationError struct {
	Step   string
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Result))
	for _, f := range e.Result.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Result[f]))
	}
	if e.Step == "" {
		return fmt.Sprintf("validation failed (%s)", strings.Join(parts, "; "))
	}
	return fmt.Sprintf("step '%s' validation failed (%s)", e.Step, strings.Join(parts, "; "))
}
