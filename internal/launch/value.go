package launch

import (
	"fmt"
	"sort"
)

// Value is a deferred parameter value. Text values resolve to strings; static
// values carry native data (bools, numbers, lists) through unchanged.
type Value interface {
	ResolveValue(args Values) (any, error)
	References() []string
}

type textValue struct{ sub Substitution }

// Text wraps a substitution as a parameter value. The result is always a
// string; coercing it to another type is left to the consuming process.
func Text(s Substitution) Value { return textValue{sub: s} }

func (t textValue) ResolveValue(args Values) (any, error) { return t.sub.Resolve(args) }
func (t textValue) References() []string                 { return t.sub.References() }

type staticValue struct{ v any }

// Static wraps a native value. Maps and slices are copied on every
// resolution so that plans never share mutable state.
func Static(v any) Value { return staticValue{v: v} }

func (s staticValue) ResolveValue(Values) (any, error) { return cloneValue(s.v), nil }
func (s staticValue) References() []string           { return nil }

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func resolveEntries(entries map[string]Value, args Values) (Parameters, error) {
	out := make(Parameters, len(entries))
	for _, key := range sortedKeys(entries) {
		val := entries[key]
		if val == nil {
			return nil, fmt.Errorf("key %q: nil value", key)
		}
		v, err := val.ResolveValue(args)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}
