package launch

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownArgument is returned when an override names an argument that
	// was never declared.
	ErrUnknownArgument = errors.New("unknown argument")
	// ErrMissingRequiredArgument is returned when a declaration without a
	// default receives no override.
	ErrMissingRequiredArgument = errors.New("missing required argument")
	// ErrInvalidArgumentValue is returned when a value is outside the
	// declared choices.
	ErrInvalidArgumentValue = errors.New("invalid argument value")
	// ErrDuplicateArgument is returned when two declarations share a name.
	ErrDuplicateArgument = errors.New("duplicate argument declaration")
	// ErrUndeclaredReference is returned when a substitution reads an
	// argument that has no declaration.
	ErrUndeclaredReference = errors.New("reference to undeclared argument")
	// ErrParameterSource marks failures to locate or parse a file-based
	// parameter layer. See ParameterSourceError.
	ErrParameterSource = errors.New("parameter source error")
	// ErrDuplicateProcessName is returned when two selected processes
	// resolve to the same name.
	ErrDuplicateProcessName = errors.New("duplicate process name")
	// ErrDuplicateProcessID is returned when two process specs share an ID.
	ErrDuplicateProcessID = errors.New("duplicate process id")
	// ErrUnknownDependency is returned when depends_on names a process ID
	// that is not part of the descriptor.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrDependencyCycle is returned when depends_on edges form a cycle.
	ErrDependencyCycle = errors.New("dependency cycle")
	// ErrInvalidLifecycleGroup is returned for malformed lifecycle groups.
	ErrInvalidLifecycleGroup = errors.New("invalid lifecycle group")
	// ErrInvalidProcess is returned for malformed process specs.
	ErrInvalidProcess = errors.New("invalid process spec")
)

// ParameterSourceError reports a file-based parameter layer that could not
// be located or parsed, together with the process and layer that owned it.
type ParameterSourceError struct {
	Process string
	Layer   int
	Source  string
	Err     error
}

func (e *ParameterSourceError) Error() string {
	return fmt.Sprintf("process %q: parameter layer %d (%s): %v", e.Process, e.Layer, e.Source, e.Err)
}

func (e *ParameterSourceError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrParameterSource) match.
func (e *ParameterSourceError) Is(target error) bool {
	return target == ErrParameterSource
}
