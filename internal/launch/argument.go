package launch

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ArgumentDeclaration declares one launch argument.
type ArgumentDeclaration struct {
	Name string
	// Default is resolved when no override is given. A nil Default makes the
	// argument required. Defaults may read arguments declared before them.
	Default     Substitution
	Description string
	// Choices, when non-empty, restricts the accepted values.
	Choices []string
}

// Required reports whether the declaration has no default.
func (d ArgumentDeclaration) Required() bool {
	return d.Default == nil
}

// Resolve produces exactly one value per declaration: the override when one
// is given, otherwise the resolved default. Declarations are processed in
// order, so a default can only see arguments declared earlier.
func Resolve(decls []ArgumentDeclaration, overrides map[string]string) (Values, error) {
	declared := make(map[string]struct{}, len(decls))
	for _, d := range decls {
		if _, dup := declared[d.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateArgument, d.Name)
		}
		declared[d.Name] = struct{}{}
	}

	var unknown []string
	for name := range overrides {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		errs := make([]error, 0, len(unknown))
		for _, name := range unknown {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownArgument, name))
		}
		return nil, errors.Join(errs...)
	}

	values := make(Values, len(decls))
	for _, d := range decls {
		v, err := resolveArgument(d, overrides, values)
		if err != nil {
			return nil, err
		}
		values[d.Name] = v
	}
	return values, nil
}

func resolveArgument(d ArgumentDeclaration, overrides map[string]string, soFar Values) (string, error) {
	v, overridden := overrides[d.Name]
	if !overridden {
		if d.Default == nil {
			return "", fmt.Errorf("%w: %q", ErrMissingRequiredArgument, d.Name)
		}
		var err error
		v, err = d.Default.Resolve(soFar)
		if err != nil {
			return "", fmt.Errorf("argument %q: default: %w", d.Name, err)
		}
	}
	if len(d.Choices) > 0 && !slices.Contains(d.Choices, v) {
		return "", fmt.Errorf("%w: argument %q is %q, expected one of %q", ErrInvalidArgumentValue, d.Name, v, d.Choices)
	}
	return v, nil
}
