package launch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/launchgrid/internal/ctxlog"
	"github.com/specialistvlad/launchgrid/internal/paramfile"
)

// Plan is the result of a successful build.
type Plan struct {
	ID        string          `json:"id" yaml:"id"`
	Arguments Values          `json:"arguments" yaml:"arguments"`
	Requests  []LaunchRequest `json:"requests" yaml:"requests"`
	Lifecycle []ManagedGroup  `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`
	QoS       []QoSProfile    `json:"qos,omitempty" yaml:"qos,omitempty"`
	// Failures is only populated under WithParameterIsolation.
	Failures []ProcessFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// ProcessFailure records a process dropped from a partial plan.
type ProcessFailure struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Error string `json:"error" yaml:"error"`
	Err   error  `json:"-" yaml:"-"`
}

// Request returns the launch request for the given process name, if any.
func (p *Plan) Request(name string) (LaunchRequest, bool) {
	for _, r := range p.Requests {
		if r.Name == name || r.FullName() == name {
			return r, true
		}
	}
	return LaunchRequest{}, false
}

type buildOptions struct {
	isolate bool
	reader  ParameterReader
	planID  string
}

// BuildOption customizes Build.
type BuildOption func(*buildOptions)

// WithParameterIsolation makes a ParameterSourceError drop only the owning
// process instead of failing the whole build. Dropped processes are listed
// in Plan.Failures. Every other error still aborts the build.
func WithParameterIsolation() BuildOption {
	return func(o *buildOptions) { o.isolate = true }
}

// WithParameterReader sets the reader used for file layers. The default
// reads YAML from disk with paramfile.Reader.
func WithParameterReader(r ParameterReader) BuildOption {
	return func(o *buildOptions) { o.reader = r }
}

// WithPlanID fixes the plan ID instead of generating a random one.
func WithPlanID(id string) BuildOption {
	return func(o *buildOptions) { o.planID = id }
}

// Build is shorthand for NewDescriptor followed by Descriptor.Build.
func Build(ctx context.Context, def Definition, overrides map[string]string, opts ...BuildOption) (*Plan, error) {
	d, err := NewDescriptor(def)
	if err != nil {
		return nil, err
	}
	return d.Build(ctx, overrides, opts...)
}

// selectedProcess is a process that survived selection, with its resolved names.
type selectedProcess struct {
	spec      *ProcessSpec
	name      string
	namespace string
}

// Build resolves the descriptor against overrides. Requests come out in
// declaration order, adjusted only where depends_on requires it. Every check
// runs before the plan is returned, so a caller never starts part of a
// broken launch.
func (d *Descriptor) Build(ctx context.Context, overrides map[string]string, opts ...BuildOption) (*Plan, error) {
	o := buildOptions{reader: paramfile.Reader{}}
	for _, opt := range opts {
		opt(&o)
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building launch plan.", "arguments", len(d.arguments), "processes", len(d.processes), "overrides", len(overrides))

	args, err := Resolve(d.arguments, overrides)
	if err != nil {
		return nil, fmt.Errorf("resolving arguments: %w", err)
	}
	logger.Debug("Arguments resolved.", "values", args)

	selected := Select(d.processes, args)
	if skipped := len(d.processes) - len(selected); skipped > 0 {
		logger.Debug("Conditions excluded processes.", "excluded", skipped)
	}

	ordered, err := orderByDependencies(selected)
	if err != nil {
		return nil, err
	}

	procs, err := resolveNames(ordered, args)
	if err != nil {
		return nil, err
	}

	groups, managerLayers, err := d.resolveGroups(procs, args)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		ID:        o.planID,
		Arguments: args,
		Requests:  make([]LaunchRequest, 0, len(procs)),
		Lifecycle: groups,
		QoS:       d.QoS(),
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}

	for _, proc := range procs {
		_, plogger := ctxlog.With(ctx, "process", proc.spec.ID)

		layers := proc.spec.Parameters
		if extra, ok := managerLayers[proc.spec.ID]; ok {
			layers = append(append([]ParameterLayer(nil), layers...), extra...)
		}

		// Each process merges against its own copy of the arguments.
		params, err := merge(layers, args.Clone(), o.reader, proc.name, qualify(proc.namespace, proc.name))
		if err != nil {
			if o.isolate && errors.Is(err, ErrParameterSource) {
				plogger.Warn("Dropping process: parameter source failed.", "error", err)
				plan.Failures = append(plan.Failures, ProcessFailure{ID: proc.spec.ID, Name: proc.name, Error: err.Error(), Err: err})
				continue
			}
			return nil, err
		}

		req, err := assembleRequest(proc, args, params)
		if err != nil {
			return nil, err
		}
		plogger.Debug("Launch request assembled.", "executable", req.Executable.String(), "parameters", len(req.Parameters))
		plan.Requests = append(plan.Requests, req)
	}

	logger.Debug("Launch plan built.", "plan_id", plan.ID, "requests", len(plan.Requests), "failures", len(plan.Failures))
	return plan, nil
}

// resolveNames substitutes process names and rejects duplicates before any
// parameters are merged.
func resolveNames(specs []*ProcessSpec, args Values) ([]selectedProcess, error) {
	out := make([]selectedProcess, 0, len(specs))
	owners := make(map[string]string, len(specs))
	for _, spec := range specs {
		name := spec.ID
		if spec.Name != nil {
			var err error
			if name, err = spec.Name.Resolve(args); err != nil {
				return nil, fmt.Errorf("process %q: name: %w", spec.ID, err)
			}
		}
		if name == "" {
			return nil, fmt.Errorf("%w: process %q resolved to an empty name", ErrInvalidProcess, spec.ID)
		}
		namespace, err := resolveOptional(spec.Namespace, args)
		if err != nil {
			return nil, fmt.Errorf("process %q: namespace: %w", spec.ID, err)
		}

		full := qualify(namespace, name)
		if prev, dup := owners[full]; dup {
			return nil, fmt.Errorf("%w: %q is used by processes %q and %q", ErrDuplicateProcessName, full, prev, spec.ID)
		}
		owners[full] = spec.ID
		out = append(out, selectedProcess{spec: spec, name: name, namespace: namespace})
	}
	return out, nil
}

func (d *Descriptor) resolveGroups(procs []selectedProcess, args Values) ([]ManagedGroup, map[string][]ParameterLayer, error) {
	if len(d.lifecycle) == 0 {
		return nil, nil, nil
	}
	selected := make(map[string]selectedProcess, len(procs))
	for _, p := range procs {
		selected[p.spec.ID] = p
	}

	groups := make([]ManagedGroup, 0, len(d.lifecycle))
	layers := make(map[string][]ParameterLayer)
	for _, g := range d.lifecycle {
		autostart, err := g.resolveAutostart(args)
		if err != nil {
			return nil, nil, err
		}
		mg := ManagedGroup{
			Name:      g.Name,
			NodeNames: append([]string(nil), g.NodeNames...),
			Autostart: autostart,
		}
		if g.Manager != "" {
			if p, ok := selected[g.Manager]; ok {
				mg.Manager = p.name
				mg.Active = true
				layers[g.Manager] = append(layers[g.Manager], mg.managerLayer())
			}
		} else {
			mg.Active = true
		}
		groups = append(groups, mg)
	}
	return groups, layers, nil
}

func assembleRequest(proc selectedProcess, args Values, params Parameters) (LaunchRequest, error) {
	spec := proc.spec
	pkg, err := resolveOptional(spec.Executable.Package, args)
	if err != nil {
		return LaunchRequest{}, fmt.Errorf("process %q: package: %w", spec.ID, err)
	}
	exe, err := spec.Executable.Name.Resolve(args)
	if err != nil {
		return LaunchRequest{}, fmt.Errorf("process %q: executable: %w", spec.ID, err)
	}
	static, err := ResolveAll(spec.Args, args)
	if err != nil {
		return LaunchRequest{}, fmt.Errorf("process %q: args: %w", spec.ID, err)
	}

	var remaps []ResolvedRemapping
	for i, r := range spec.Remappings {
		from, err := r.From.Resolve(args)
		if err != nil {
			return LaunchRequest{}, fmt.Errorf("process %q: remapping %d: %w", spec.ID, i, err)
		}
		to, err := r.To.Resolve(args)
		if err != nil {
			return LaunchRequest{}, fmt.Errorf("process %q: remapping %d: %w", spec.ID, i, err)
		}
		remaps = append(remaps, ResolvedRemapping{From: from, To: to})
	}

	output, err := ParseOutputPolicy(string(spec.Output))
	if err != nil {
		return LaunchRequest{}, fmt.Errorf("process %q: %w", spec.ID, err)
	}

	return LaunchRequest{
		ID:         spec.ID,
		Executable: Executable{Package: pkg, Name: exe},
		Name:       proc.name,
		Namespace:  proc.namespace,
		Output:     output,
		Parameters: params,
		Args:       static,
		Remappings: remaps,
	}, nil
}
