package rules

import "fmt"

// ParseError reports a syntax error in rule source.
type ParseError struct {
	Name   string // Source name, e.g. the file name
	Line   int
	Column int
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("rules: %s:%d:%d: %v", e.Name, e.Line, e.Column, e.Cause)
	}
	return fmt.Sprintf("rules: %s: %v", e.Name, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// InvalidRuleError reports a rule that can never match or has no direction.
type InvalidRuleError struct {
	Rule   Rule
	Reason string
}

func (e *InvalidRuleError) Error() string {
	if e.Rule.Origin != "" {
		return fmt.Sprintf("rules: invalid rule at %s: %s", e.Rule.Origin, e.Reason)
	}
	return fmt.Sprintf("rules: invalid rule %s: %s", e.Rule, e.Reason)
}

// AmbiguousRuleError reports two rules with the same effective pattern in the
// same direction.
type AmbiguousRuleError struct {
	Direction Direction
	Pattern   string
	First     Rule
	Second    Rule
}

func (e *AmbiguousRuleError) Error() string {
	return fmt.Sprintf("rules: ambiguous pattern %q for %s: %s conflicts with %s",
		e.Pattern, e.Direction, describe(e.Second), describe(e.First))
}

func describe(r Rule) string {
	if r.Origin != "" {
		return r.Origin
	}
	return r.String()
}
