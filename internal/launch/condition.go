package launch

import "strings"

// Condition decides whether a process is part of a launch. Evaluation never
// fails: values that are not recognized as true count as false.
type Condition interface {
	Evaluate(args Values) bool
	References() []string
	String() string
}

type always struct{}

// Always is the condition of processes that are launched unconditionally.
var Always Condition = always{}

func (always) Evaluate(Values) bool  { return true }
func (always) References() []string { return nil }
func (always) String() string       { return "always" }

type ifArgument string

// IfArgument returns a condition that holds when the named argument is truthy.
func IfArgument(name string) Condition { return ifArgument(name) }

func (c ifArgument) Evaluate(args Values) bool { return IsTruthy(args[string(c)]) }
func (c ifArgument) References() []string     { return []string{string(c)} }
func (c ifArgument) String() string           { return "if arg." + string(c) }

type unlessArgument string

// UnlessArgument returns a condition that holds when the named argument is
// not truthy. A malformed value therefore satisfies it.
func UnlessArgument(name string) Condition { return unlessArgument(name) }

func (c unlessArgument) Evaluate(args Values) bool { return !IsTruthy(args[string(c)]) }
func (c unlessArgument) References() []string     { return []string{string(c)} }
func (c unlessArgument) String() string           { return "unless arg." + string(c) }

// IsTruthy reports whether v is one of the recognized true tokens, "true" or
// "1", compared case-insensitively. Surrounding whitespace is not trimmed.
func IsTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1":
		return true
	default:
		return false
	}
}

// Select returns the specs whose condition holds for args, in their original
// order. A nil condition means Always.
func Select(specs []*ProcessSpec, args Values) []*ProcessSpec {
	selected := make([]*ProcessSpec, 0, len(specs))
	for _, spec := range specs {
		if spec.condition().Evaluate(args) {
			selected = append(selected, spec)
		}
	}
	return selected
}
