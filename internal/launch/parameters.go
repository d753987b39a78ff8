package launch

import (
	"errors"
	"fmt"
)

// Parameters is the merged key/value mapping handed to one process.
type Parameters map[string]any

// ParameterReader loads a file-based parameter layer for one process, named
// by its fully qualified name such as "/robot1/amcl". The returned mapping
// must be flat (nested keys joined with ".").
type ParameterReader interface {
	ReadParameters(path, process string) (map[string]any, error)
}

// ParameterLayer is one source in a process's ordered parameter chain.
// FileLayer and InlineLayer are the only implementations.
type ParameterLayer interface {
	References() []string
	// Describe names the layer in error messages and plan listings.
	Describe() string
	resolve(args Values, reader ParameterReader, process string) (Parameters, error)
}

// FileLayer reads parameters from a file whose path is resolved at build time.
type FileLayer struct {
	Path Substitution
}

func (l FileLayer) References() []string { return referencesOf(l.Path) }

func (l FileLayer) Describe() string {
	if s, ok := l.Path.(fmt.Stringer); ok {
		return "file " + s.String()
	}
	return "file"
}

func (l FileLayer) resolve(args Values, reader ParameterReader, process string) (Parameters, error) {
	if l.Path == nil {
		return nil, errors.New("file layer has no path")
	}
	path, err := l.Path.Resolve(args)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if reader == nil {
		return nil, fmt.Errorf("no parameter reader configured for %s", path)
	}
	params, err := reader.ReadParameters(path, process)
	if err != nil {
		return nil, &sourceFailure{path: path, err: err}
	}
	out := make(Parameters, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out, nil
}

// sourceFailure carries the resolved path out of FileLayer.resolve so that
// Merge can attach process and layer context.
type sourceFailure struct {
	path string
	err  error
}

func (s *sourceFailure) Error() string { return s.path + ": " + s.err.Error() }
func (s *sourceFailure) Unwrap() error { return s.err }

// InlineLayer supplies parameters directly in the descriptor.
type InlineLayer struct {
	Entries map[string]Value
}

func (l InlineLayer) References() []string {
	var out []string
	for _, key := range sortedKeys(l.Entries) {
		if v := l.Entries[key]; v != nil {
			out = append(out, v.References()...)
		}
	}
	return out
}

func (l InlineLayer) Describe() string { return fmt.Sprintf("inline (%d keys)", len(l.Entries)) }

func (l InlineLayer) resolve(args Values, _ ParameterReader, _ string) (Parameters, error) {
	return resolveEntries(l.Entries, args)
}

// Merge resolves every layer independently and folds them left to right:
// keys of a later layer overwrite the same keys of earlier layers, keys it
// does not mention survive. A file layer that cannot be read or parsed fails
// with a *ParameterSourceError naming the process and layer index.
func Merge(layers []ParameterLayer, args Values, reader ParameterReader, process string) (Parameters, error) {
	return merge(layers, args, reader, process, process)
}

// merge reports errors against process and hands fullName to the reader, so
// a namespaced process can match its fully qualified file section.
func merge(layers []ParameterLayer, args Values, reader ParameterReader, process, fullName string) (Parameters, error) {
	merged := make(Parameters)
	for i, layer := range layers {
		if layer == nil {
			return nil, fmt.Errorf("process %q: parameter layer %d is nil", process, i)
		}
		params, err := layer.resolve(args, reader, fullName)
		if err != nil {
			var sf *sourceFailure
			if errors.As(err, &sf) {
				return nil, &ParameterSourceError{Process: process, Layer: i, Source: sf.path, Err: sf.err}
			}
			return nil, fmt.Errorf("process %q: parameter layer %d (%s): %w", process, i, layer.Describe(), err)
		}
		for k, v := range params {
			merged[k] = v
		}
	}
	return merged, nil
}
