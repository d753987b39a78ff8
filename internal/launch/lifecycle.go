package launch

import (
	"fmt"
	"strings"
)

// LifecycleGroup names the processes an external lifecycle manager brings
// up, in activation order. The resolver does not drive the lifecycle; it only
// hands the group to the manager process as parameters and lists it in the
// plan.
type LifecycleGroup struct {
	Name string
	// Manager is the ID of the lifecycle manager process. When that process
	// is selected, node_names and autostart are appended as its last
	// parameter layer.
	Manager   string
	NodeNames []string
	// Autostart is resolved to a bool: native bools pass through, strings go
	// through IsTruthy. Nil means true.
	Autostart Value
}

// ManagedGroup is a resolved LifecycleGroup.
type ManagedGroup struct {
	Name      string   `json:"name" yaml:"name"`
	Manager   string   `json:"manager,omitempty" yaml:"manager,omitempty"`
	NodeNames []string `json:"node_names" yaml:"node_names"`
	Autostart bool     `json:"autostart" yaml:"autostart"`
	// Active is false when the manager process was not selected.
	Active bool `json:"active" yaml:"active"`
}

func (g LifecycleGroup) validate() error {
	if g.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidLifecycleGroup)
	}
	seen := make(map[string]struct{}, len(g.NodeNames))
	for _, n := range g.NodeNames {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("%w: group %q: empty node name", ErrInvalidLifecycleGroup, g.Name)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: group %q: node %q listed twice", ErrInvalidLifecycleGroup, g.Name, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func (g LifecycleGroup) resolveAutostart(args Values) (bool, error) {
	if g.Autostart == nil {
		return true, nil
	}
	v, err := g.Autostart.ResolveValue(args)
	if err != nil {
		return false, fmt.Errorf("lifecycle group %q: autostart: %w", g.Name, err)
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return IsTruthy(t), nil
	default:
		return false, nil
	}
}

// managerLayer is the parameter layer appended to a lifecycle manager.
func (g ManagedGroup) managerLayer() ParameterLayer {
	return InlineLayer{Entries: map[string]Value{
		"node_names": Static(append([]string(nil), g.NodeNames...)),
		"autostart":  Static(g.Autostart),
	}}
}
