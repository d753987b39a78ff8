package launch

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Values maps argument names to their resolved string values.
type Values map[string]string

// Clone returns an independent copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Substitution is a deferred string, resolved only when a descriptor is
// built. Implementations must be pure: the same Values always yield the same
// result.
type Substitution interface {
	Resolve(args Values) (string, error)
	// References lists the argument names the substitution reads.
	References() []string
}

type literal string

// Literal returns a substitution that always resolves to s.
func Literal(s string) Substitution { return literal(s) }

func (l literal) Resolve(Values) (string, error) { return string(l), nil }
func (l literal) References() []string          { return nil }
func (l literal) String() string                { return fmt.Sprintf("%q", string(l)) }

type argRef string

// Arg returns a substitution that resolves to the value of the named argument.
func Arg(name string) Substitution { return argRef(name) }

func (a argRef) Resolve(args Values) (string, error) {
	v, ok := args[string(a)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUndeclaredReference, string(a))
	}
	return v, nil
}

func (a argRef) References() []string { return []string{string(a)} }
func (a argRef) String() string       { return "arg." + string(a) }

type pathSub []Substitution

// Path returns a substitution joining a directory and further segments with
// the OS path separator.
func Path(segments ...Substitution) Substitution { return pathSub(segments) }

func (p pathSub) Resolve(args Values) (string, error) {
	parts, err := ResolveAll(p, args)
	if err != nil {
		return "", err
	}
	return filepath.Join(parts...), nil
}

func (p pathSub) References() []string { return referencesOf(p...) }

type concatSub []Substitution

// Concat returns a substitution that joins its parts without a separator.
func Concat(parts ...Substitution) Substitution { return concatSub(parts) }

func (c concatSub) Resolve(args Values) (string, error) {
	parts, err := ResolveAll(c, args)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ""), nil
}

func (c concatSub) References() []string { return referencesOf(c...) }

// ResolveAll resolves every substitution in order.
func ResolveAll(subs []Substitution, args Values) ([]string, error) {
	out := make([]string, 0, len(subs))
	for i, s := range subs {
		if s == nil {
			return nil, fmt.Errorf("element %d: nil substitution", i)
		}
		v, err := s.Resolve(args)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// resolveOptional resolves s, treating nil as the empty string.
func resolveOptional(s Substitution, args Values) (string, error) {
	if s == nil {
		return "", nil
	}
	return s.Resolve(args)
}

type referencer interface {
	References() []string
}

func referencesOf[T referencer](items ...T) []string {
	var out []string
	for _, item := range items {
		if any(item) == nil {
			continue
		}
		out = append(out, item.References()...)
	}
	return out
}
