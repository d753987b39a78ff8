package launch

import (
	"fmt"
	"strings"
)

// OutputPolicy tells the supervisor where a process's output goes.
type OutputPolicy string

const (
	OutputScreen OutputPolicy = "screen"
	OutputLog    OutputPolicy = "log"
	OutputBoth   OutputPolicy = "both"
)

// ParseOutputPolicy validates s. The empty string selects OutputLog.
func ParseOutputPolicy(s string) (OutputPolicy, error) {
	switch OutputPolicy(strings.ToLower(s)) {
	case "":
		return OutputLog, nil
	case OutputScreen:
		return OutputScreen, nil
	case OutputLog:
		return OutputLog, nil
	case OutputBoth:
		return OutputBoth, nil
	default:
		return "", fmt.Errorf("unknown output policy %q: expected screen, log or both", s)
	}
}

// ExecutableSpec identifies the program to run, as a package plus an
// executable name inside it. Package may be nil for programs found on PATH.
type ExecutableSpec struct {
	Package Substitution
	Name    Substitution
}

// Executable is a resolved ExecutableSpec.
type Executable struct {
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	Name    string `json:"name" yaml:"name"`
}

func (e Executable) String() string {
	if e.Package == "" {
		return e.Name
	}
	return e.Package + "/" + e.Name
}

// Remapping renames a transport endpoint used by the process.
type Remapping struct {
	From Substitution
	To   Substitution
}

// ResolvedRemapping is a Remapping after substitution.
type ResolvedRemapping struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// ProcessSpec declares one process. Specs are never mutated once a
// Descriptor owns them.
type ProcessSpec struct {
	// ID identifies the spec inside the descriptor. DependsOn and lifecycle
	// groups refer to processes by ID.
	ID         string
	Executable ExecutableSpec
	// Name is the process name; nil means the ID.
	Name Substitution
	// Namespace is optional and prefixes the name.
	Namespace  Substitution
	Output     OutputPolicy
	Parameters []ParameterLayer
	// Condition gates inclusion; nil means Always.
	Condition  Condition
	Args       []Substitution
	Remappings []Remapping
	// DependsOn lists IDs that must precede this process in the plan.
	DependsOn []string
}

func (p *ProcessSpec) condition() Condition {
	if p.Condition == nil {
		return Always
	}
	return p.Condition
}

// References lists every argument name read anywhere in the spec.
func (p *ProcessSpec) References() []string {
	var out []string
	out = append(out, referencesOf(p.Executable.Package, p.Executable.Name, p.Name, p.Namespace)...)
	out = append(out, referencesOf(p.Parameters...)...)
	out = append(out, p.condition().References()...)
	out = append(out, referencesOf(p.Args...)...)
	for _, r := range p.Remappings {
		out = append(out, referencesOf(r.From, r.To)...)
	}
	return out
}

func (p *ProcessSpec) clone() *ProcessSpec {
	c := *p
	c.Parameters = append([]ParameterLayer(nil), p.Parameters...)
	c.Args = append([]Substitution(nil), p.Args...)
	c.Remappings = append([]Remapping(nil), p.Remappings...)
	c.DependsOn = append([]string(nil), p.DependsOn...)
	return &c
}

func (p *ProcessSpec) validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidProcess)
	}
	if p.Executable.Name == nil {
		return fmt.Errorf("%w: process %q has no executable", ErrInvalidProcess, p.ID)
	}
	if _, err := ParseOutputPolicy(string(p.Output)); err != nil {
		return fmt.Errorf("%w: process %q: %w", ErrInvalidProcess, p.ID, err)
	}
	for i, r := range p.Remappings {
		if r.From == nil || r.To == nil {
			return fmt.Errorf("%w: process %q: remapping %d is incomplete", ErrInvalidProcess, p.ID, i)
		}
	}
	return nil
}

// LaunchRequest is one fully resolved process, ready for a supervisor.
type LaunchRequest struct {
	ID         string              `json:"id" yaml:"id"`
	Executable Executable          `json:"executable" yaml:"executable"`
	Name       string              `json:"name" yaml:"name"`
	Namespace  string              `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Output     OutputPolicy        `json:"output" yaml:"output"`
	Parameters Parameters          `json:"parameters" yaml:"parameters"`
	Args       []string            `json:"args" yaml:"args"`
	Remappings []ResolvedRemapping `json:"remappings,omitempty" yaml:"remappings,omitempty"`
}

// FullName is the namespaced process name, e.g. "/robot1/amcl".
func (r LaunchRequest) FullName() string {
	return qualify(r.Namespace, r.Name)
}

func qualify(namespace, name string) string {
	ns := strings.Trim(namespace, "/")
	if ns == "" {
		return "/" + strings.TrimPrefix(name, "/")
	}
	return "/" + ns + "/" + strings.TrimPrefix(name, "/")
}
