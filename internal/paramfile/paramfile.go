// Package paramfile reads and writes YAML parameter files.
//
// Two document shapes are understood. A flat document is a plain mapping
// and applies to every process that loads it. A node-scoped document keys
// each section by process name and nests the values under ros__parameters:
//
//	/**:
//	  ros__parameters:
//	    use_sim_time: true
//	amcl:
//	  ros__parameters:
//	    max_particles: 2000
//
// For a scoped document the wildcard section applies first, then the
// section keyed by the bare process name, then the fully qualified one such
// as /robot1/amcl. Nested mappings are flattened into dotted keys. Mapping
// keys that YAML decodes as numbers or booleans are kept as their text.
package paramfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// SectionKey nests the parameters of one node-scoped section.
	SectionKey = "ros__parameters"
	// Wildcard names the section that applies to every process.
	Wildcard = "/**"
)

// Document is a parsed parameter file.
type Document struct {
	Path   string
	root   map[string]any
	scoped bool
}

// Parse decodes a YAML parameter document. An empty document is valid and
// holds no parameters.
func Parse(data []byte) (*Document, error) {
	doc := &Document{root: map[string]any{}}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	if raw == nil {
		return doc, nil
	}
	root := stringKeys(raw)
	m, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode parameters: top level must be a mapping, got %T", root)
	}
	doc.root = m
	for _, v := range m {
		if section, ok := v.(map[string]any); ok {
			if _, has := section[SectionKey]; has {
				doc.scoped = true
				break
			}
		}
	}
	return doc, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Scoped reports whether the document keys its sections by process name.
func (d *Document) Scoped() bool { return d.scoped }

// For returns the flat parameters that apply to the named process.
func (d *Document) For(process string) map[string]any {
	out := make(map[string]any)
	if !d.scoped {
		flattenInto(out, "", d.root)
		return out
	}
	for _, key := range sectionKeys(process) {
		section, ok := d.root[key].(map[string]any)
		if !ok {
			continue
		}
		params, ok := section[SectionKey].(map[string]any)
		if !ok {
			continue
		}
		flattenInto(out, "", params)
	}
	return out
}

// sectionKeys lists the section names that apply to process, lowest
// precedence first. process may be a bare name or a fully qualified one.
func sectionKeys(process string) []string {
	full := strings.Trim(process, "/")
	keys := []string{Wildcard, "**"}
	if full == "" {
		return keys
	}
	base := full[strings.LastIndex(full, "/")+1:]
	keys = append(keys, base, "/"+base)
	if full != base {
		keys = append(keys, full, "/"+full)
	}
	return keys
}

// stringKeys rewrites every mapping below v to use string keys. yaml.v3
// decodes a mapping with a number or boolean key as map[any]any, which
// neither flattens nor encodes as JSON.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = stringKeys(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = stringKeys(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = stringKeys(child)
		}
		return t
	default:
		return v
	}
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			flattenInto(out, key, nested)
			continue
		}
		out[key] = v
	}
}

// Reader loads parameter files from disk. The zero value is ready to use.
// It reads the file on every call; retrying is the caller's business.
type Reader struct{}

// ReadParameters loads path and returns the parameters for process.
func (Reader) ReadParameters(path, process string) (map[string]any, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return doc.For(process), nil
}

// ErrKeyConflict is returned by Encode when a key is both a value and the
// prefix of another key, such as "a" and "a.b".
var ErrKeyConflict = errors.New("parameter key conflict")

// Encode renders flat parameters as a node-scoped document for process,
// expanding dotted keys back into nested mappings.
func Encode(process string, params map[string]any) ([]byte, error) {
	nested, err := unflatten(params)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{
		strings.TrimPrefix(process, "/"): map[string]any{SectionKey: nested},
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}
	return buf.Bytes(), nil
}

func unflatten(params map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := root
		for i, part := range parts[:len(parts)-1] {
			next, exists := node[part]
			if !exists {
				child := make(map[string]any)
				node[part] = child
				node = child
				continue
			}
			child, ok := next.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %q is a value and also has sub-keys", ErrKeyConflict, strings.Join(parts[:i+1], "."))
			}
			node = child
		}
		leaf := parts[len(parts)-1]
		if _, exists := node[leaf]; exists {
			return nil, fmt.Errorf("%w: %q is a value and also has sub-keys", ErrKeyConflict, key)
		}
		node[leaf] = params[key]
	}
	return root, nil
}
