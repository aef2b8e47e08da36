/*
Package validation implements the field validator shared by every flow.

Each flow supplies a declarative rule table (field name, rule kind, parameters)
instead of reimplementing its checks. Tables can be built in Go with the rule
constructors or loaded from YAML:

	- field: email
	  kind: required
	  message: Email is required
	- field: email
	  kind: email
	  pattern: strict
	- field: password
	  kind: min_length
	  min: 6

Validation is pure: the same FormState always yields the same ValidationResult.
*/
package validation
