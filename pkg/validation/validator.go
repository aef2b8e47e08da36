package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/assist/pkg/domain"
)

// Validator evaluates a compiled rule table against a FormState.
// It holds no mutable state; Validate is safe to call repeatedly and concurrently.
type Validator struct {
	rules    []Rule
	patterns []*regexp.Regexp // parallel to rules, nil unless KindEmail
}

// New compiles a rule table.
func New(rules []Rule) (*Validator, error) {
	v := &Validator{
		rules:    slices.Clone(rules),
		patterns: make([]*regexp.Regexp, len(rules)),
	}
	for i, r := range rules {
		if r.Field == "" {
			return nil, fmt.Errorf("rule %d: field is required", i)
		}
		switch r.Kind {
		case KindRequired, KindPresent, KindFile, KindOneOf:
		case KindMinLength:
			if r.Min <= 0 {
				return nil, fmt.Errorf("rule %d (%s): min must be positive", i, r.Field)
			}
		case KindMatch:
			if r.Other == "" {
				return nil, fmt.Errorf("rule %d (%s): match needs 'other'", i, r.Field)
			}
		case KindEmail:
			expr := r.Pattern
			if expr == "" {
				expr = PatternStrict
			}
			if named, ok := emailPatterns[expr]; ok {
				expr = named
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): invalid pattern: %w", i, r.Field, err)
			}
			v.patterns[i] = re
		default:
			return nil, fmt.Errorf("rule %d (%s): unknown kind %q", i, r.Field, r.Kind)
		}
	}
	return v, nil
}

// MustNew is like New but panics on an invalid table. Intended for package-level tables.
func MustNew(rules []Rule) *Validator {
	v, err := New(rules)
	if err != nil {
		panic(err)
	}
	return v
}

// Rules returns a copy of the rule table.
func (v *Validator) Rules() []Rule {
	return slices.Clone(v.rules)
}

// Fields returns the fields covered by the table.
func (v *Validator) Fields() []string {
	return Fields(v.rules)
}

// Validate derives a fresh ValidationResult from the state.
// The first failing rule of a field wins; later rules for that field are skipped.
func (v *Validator) Validate(state *domain.FormState) domain.ValidationResult {
	result := domain.ValidationResult{}
	for i, r := range v.rules {
		if _, failed := result[r.Field]; failed {
			continue
		}
		if msg, ok := v.check(i, r, state); !ok {
			result[r.Field] = msg
		}
	}
	return result
}

func (v *Validator) check(i int, r Rule, state *domain.FormState) (string, bool) {
	text := state.Text(r.Field)
	switch r.Kind {
	case KindRequired:
		if strings.TrimSpace(text) == "" {
			return message(r, "%s is required", Label(r.Field)), false
		}
	case KindPresent:
		if text == "" {
			return message(r, "%s is required", Label(r.Field)), false
		}
	case KindEmail:
		if text != "" && !v.patterns[i].MatchString(text) {
			return message(r, "Email is invalid"), false
		}
	case KindMinLength:
		if text != "" && utf8.RuneCountInString(text) < r.Min {
			return message(r, "%s must be at least %d characters", Label(r.Field), r.Min), false
		}
	case KindMatch:
		if text != state.Text(r.Other) {
			return message(r, "%s does not match %s", Label(r.Field), Label(r.Other)), false
		}
	case KindOneOf:
		if text != "" && !slices.Contains(r.Options, text) {
			return message(r, "%s must be one of: %s", Label(r.Field), strings.Join(r.Options, ", ")), false
		}
	case KindFile:
		if state.File(r.Field) == nil {
			return message(r, "%s is required", Label(r.Field)), false
		}
	}
	return "", true
}

func message(r Rule, format string, args ...any) string {
	if r.Message != "" {
		return r.Message
	}
	return fmt.Sprintf(format, args...)
}

// Label turns a camelCase field name into display text: "phoneNumber" becomes "Phone number".
func Label(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
