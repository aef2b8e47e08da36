package validation

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Kind names the check a Rule performs.
type Kind string

const (
	// KindRequired fails when the trimmed text is empty.
	KindRequired Kind = "required"
	// KindPresent fails only when the text is empty. Whitespace counts as a value.
	KindPresent Kind = "present"
	// KindEmail fails when the text is non-empty and does not match the email pattern.
	KindEmail Kind = "email"
	// KindMinLength fails when the text is non-empty and shorter than Min runes.
	KindMinLength Kind = "min_length"
	// KindMatch fails when the text differs from the field named by Other.
	KindMatch Kind = "match"
	// KindOneOf fails when the text is non-empty and not listed in Options.
	KindOneOf Kind = "one_of"
	// KindFile fails when the slot holds no file.
	KindFile Kind = "file"
)

// Email pattern names accepted in Rule.Pattern.
const (
	PatternLoose  = "loose"
	PatternStrict = "strict"
)

var emailPatterns = map[string]string{
	PatternLoose:  `^\S+@\S+\.\S+$`,
	PatternStrict: `^[^\s@]+@[^\s@]+\.[^\s@]+$`,
}

// Rule is one row of a flow's rule table.
type Rule struct {
	Field   string   `yaml:"field" mapstructure:"field"`
	Kind    Kind     `yaml:"kind" mapstructure:"kind"`
	Pattern string   `yaml:"pattern,omitempty" mapstructure:"pattern"`
	Min     int      `yaml:"min,omitempty" mapstructure:"min"`
	Other   string   `yaml:"other,omitempty" mapstructure:"other"`
	Options []string `yaml:"options,omitempty" mapstructure:"options"`
	Message string   `yaml:"message,omitempty" mapstructure:"message"`
}

// Required builds a KindRequired rule.
func Required(field, message string) Rule {
	return Rule{Field: field, Kind: KindRequired, Message: message}
}

// Present builds a KindPresent rule, used for secrets where spaces are significant.
func Present(field, message string) Rule {
	return Rule{Field: field, Kind: KindPresent, Message: message}
}

// Email builds a KindEmail rule with a named or custom pattern.
func Email(field, pattern, message string) Rule {
	return Rule{Field: field, Kind: KindEmail, Pattern: pattern, Message: message}
}

// MinLength builds a KindMinLength rule.
func MinLength(field string, min int, message string) Rule {
	return Rule{Field: field, Kind: KindMinLength, Min: min, Message: message}
}

// Match builds a KindMatch rule comparing field against other.
func Match(field, other, message string) Rule {
	return Rule{Field: field, Kind: KindMatch, Other: other, Message: message}
}

// OneOf builds a KindOneOf rule.
func OneOf(field string, options []string, message string) Rule {
	return Rule{Field: field, Kind: KindOneOf, Options: options, Message: message}
}

// File builds a KindFile rule.
func File(field, message string) Rule {
	return Rule{Field: field, Kind: KindFile, Message: message}
}

// Fields returns the distinct field names a rule table declares, in table order.
// Fields referenced only through Match.Other are included as well.
func Fields(rules []Rule) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, r := range rules {
		add(r.Field)
		if r.Kind == KindMatch {
			add(r.Other)
		}
	}
	return out
}

// ParseRules decodes a YAML rule table (a sequence of rule mappings).
func ParseRules(data []byte) ([]Rule, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rule table: %w", err)
	}
	return DecodeRules(raw)
}

// DecodeRules converts generic maps (e.g. from a config file) into rules.
// Unknown keys are rejected so typos in a rule table do not silently disable a check.
func DecodeRules(raw any) ([]Rule, error) {
	var rules []Rule
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rules,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode rule table: %w", err)
	}
	return rules, nil
}
