package launch

import (
	"errors"
	"fmt"
	"slices"
)

// Definition is the raw input to NewDescriptor.
type Definition struct {
	Arguments []ArgumentDeclaration
	Processes []*ProcessSpec
	Lifecycle []LifecycleGroup
	QoS       []QoSProfile
}

// Descriptor is the validated, immutable aggregate of a launch definition.
// It owns private copies of everything passed to NewDescriptor.
type Descriptor struct {
	arguments []ArgumentDeclaration
	processes []*ProcessSpec
	lifecycle []LifecycleGroup
	qos       []QoSProfile
}

// NewDescriptor copies and validates def. All problems found are reported
// together.
func NewDescriptor(def Definition) (*Descriptor, error) {
	d := &Descriptor{
		arguments: slices.Clone(def.Arguments),
		lifecycle: slices.Clone(def.Lifecycle),
		qos:       slices.Clone(def.QoS),
	}
	for i := range d.arguments {
		d.arguments[i].Choices = slices.Clone(d.arguments[i].Choices)
	}
	for i := range d.lifecycle {
		d.lifecycle[i].NodeNames = slices.Clone(d.lifecycle[i].NodeNames)
	}
	for i, p := range def.Processes {
		if p == nil {
			return nil, fmt.Errorf("%w: process %d is nil", ErrInvalidProcess, i)
		}
		d.processes = append(d.processes, p.clone())
	}

	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Descriptor) validate() error {
	var errs []error

	declared := make(map[string]int, len(d.arguments))
	for i, a := range d.arguments {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("argument %d: empty name", i))
			continue
		}
		if _, dup := declared[a.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateArgument, a.Name))
			continue
		}
		declared[a.Name] = i
	}

	// Defaults may only read arguments declared before them.
	for i, a := range d.arguments {
		if a.Default == nil {
			continue
		}
		for _, ref := range a.Default.References() {
			if j, ok := declared[ref]; !ok || j >= i {
				errs = append(errs, fmt.Errorf("%w: default of argument %q reads %q, which is not declared before it", ErrUndeclaredReference, a.Name, ref))
			}
		}
	}

	ids := make(map[string]struct{}, len(d.processes))
	for _, p := range d.processes {
		if err := p.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := ids[p.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateProcessID, p.ID))
			continue
		}
		ids[p.ID] = struct{}{}
		for _, ref := range uniqueStrings(p.References()) {
			if _, ok := declared[ref]; !ok {
				errs = append(errs, fmt.Errorf("%w: process %q reads %q", ErrUndeclaredReference, p.ID, ref))
			}
		}
	}

	for _, p := range d.processes {
		for _, dep := range p.DependsOn {
			if dep == p.ID {
				errs = append(errs, fmt.Errorf("%w: process %q depends on itself", ErrDependencyCycle, p.ID))
			} else if _, ok := ids[dep]; !ok {
				errs = append(errs, fmt.Errorf("%w: process %q depends on %q", ErrUnknownDependency, p.ID, dep))
			}
		}
	}
	if len(errs) == 0 {
		if _, err := orderByDependencies(d.processes); err != nil {
			errs = append(errs, err)
		}
	}

	groups := make(map[string]struct{}, len(d.lifecycle))
	for _, g := range d.lifecycle {
		if err := g.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := groups[g.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: group %q declared twice", ErrInvalidLifecycleGroup, g.Name))
		}
		groups[g.Name] = struct{}{}
		if g.Manager != "" {
			if _, ok := ids[g.Manager]; !ok {
				errs = append(errs, fmt.Errorf("%w: group %q: manager %q is not a declared process", ErrInvalidLifecycleGroup, g.Name, g.Manager))
			}
		}
		if g.Autostart != nil {
			for _, ref := range g.Autostart.References() {
				if _, ok := declared[ref]; !ok {
					errs = append(errs, fmt.Errorf("%w: lifecycle group %q reads %q", ErrUndeclaredReference, g.Name, ref))
				}
			}
		}
	}

	for _, q := range d.qos {
		if err := q.validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Arguments returns a copy of the argument declarations, in order.
func (d *Descriptor) Arguments() []ArgumentDeclaration {
	return slices.Clone(d.arguments)
}

// Processes returns copies of the process specs, in declaration order.
func (d *Descriptor) Processes() []*ProcessSpec {
	out := make([]*ProcessSpec, len(d.processes))
	for i, p := range d.processes {
		out[i] = p.clone()
	}
	return out
}

// LifecycleGroups returns a copy of the lifecycle groups.
func (d *Descriptor) LifecycleGroups() []LifecycleGroup {
	return slices.Clone(d.lifecycle)
}

// QoS returns a copy of the declared QoS profiles.
func (d *Descriptor) QoS() []QoSProfile {
	return slices.Clone(d.qos)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
