package hcl_adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/launchgrid/internal/ctxlog"
	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/specialistvlad/launchgrid/internal/lgexpr"
)

// translator turns decoded HCL blocks into launch types.
type translator struct {
	ctx   context.Context
	eval  *evaluator
	files map[string]*hcl.File
}

func (t *translator) translateFile(root *fileRoot, def *launch.Definition) error {
	for _, a := range root.Arguments {
		decl, diags := t.translateArgument(a)
		if diags.HasErrors() {
			return diags
		}
		def.Arguments = append(def.Arguments, decl)
	}
	for _, p := range root.Processes {
		spec, diags := t.translateProcess(p)
		if diags.HasErrors() {
			return diags
		}
		def.Processes = append(def.Processes, spec)
	}
	for _, g := range root.Lifecycle {
		group, diags := t.translateLifecycle(g)
		if diags.HasErrors() {
			return diags
		}
		def.Lifecycle = append(def.Lifecycle, group)
	}
	for _, q := range root.QoS {
		def.QoS = append(def.QoS, launch.QoSProfile{
			Name:        q.Name,
			Reliability: q.Reliability,
			Durability:  q.Durability,
			Depth:       q.Depth,
		})
	}
	return nil
}

func (t *translator) translateArgument(a *hclArgument) (launch.ArgumentDeclaration, hcl.Diagnostics) {
	decl := launch.ArgumentDeclaration{
		Name:        a.Name,
		Description: a.Description,
		Choices:     a.Choices,
	}
	if isExprDefined(t.ctx, a.Default, "default") && !isNullLiteral(a.Default) {
		sub, diags := t.substitution(a.Default)
		if diags.HasErrors() {
			return decl, diags
		}
		decl.Default = sub
	}
	return decl, nil
}

func (t *translator) translateProcess(p *hclProcess) (*launch.ProcessSpec, hcl.Diagnostics) {
	logger := ctxlog.FromContext(t.ctx)

	content, diags := p.Body.Content(processBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs := content.Attributes

	spec := &launch.ProcessSpec{ID: p.ID}
	subs := []struct {
		name   string
		target *launch.Substitution
	}{
		{"package", &spec.Executable.Package},
		{"executable", &spec.Executable.Name},
		{"name", &spec.Name},
		{"namespace", &spec.Namespace},
	}
	for _, s := range subs {
		expr := attrExpr(attrs, s.name)
		if expr == nil {
			continue
		}
		sub, d := t.substitution(expr)
		diags = append(diags, d...)
		if !d.HasErrors() {
			*s.target = sub
		}
	}

	output, d := staticString(attrExpr(attrs, "output"), "output")
	diags = append(diags, d...)
	if policy, err := launch.ParseOutputPolicy(output); err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid output policy",
			Detail:   err.Error(),
			Subject:  attrExpr(attrs, "output").Range().Ptr(),
		})
	} else {
		spec.Output = policy
	}

	cond, d := t.translateCondition(attrs)
	diags = append(diags, d...)
	spec.Condition = cond

	if expr := attrExpr(attrs, "arguments"); expr != nil {
		args, d := t.substitutionList(expr, "arguments")
		diags = append(diags, d...)
		spec.Args = args
	}

	if expr := attrExpr(attrs, "depends_on"); expr != nil {
		diags = append(diags, gohclDecode(expr, &spec.DependsOn)...)
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "parameter_file":
			layer, d := t.translateParameterFile(block)
			diags = append(diags, d...)
			if layer != nil {
				spec.Parameters = append(spec.Parameters, layer)
			}
		case "parameters":
			layer, d := t.translateParameters(block)
			diags = append(diags, d...)
			if layer != nil {
				spec.Parameters = append(spec.Parameters, layer)
			}
		case "remap":
			r, d := t.translateRemap(block)
			diags = append(diags, d...)
			spec.Remappings = append(spec.Remappings, r)
		}
	}

	logger.Debug("Translated process block.", "id", p.ID, "layers", len(spec.Parameters), "condition", spec.Condition)
	return spec, diags
}

// translateCondition reads the mutually exclusive condition and unless
// attributes. Each must be a bare `arg.NAME` reference.
func (t *translator) translateCondition(attrs hcl.Attributes) (launch.Condition, hcl.Diagnostics) {
	ifExpr, unlessExpr := attrExpr(attrs, "condition"), attrExpr(attrs, "unless")
	if ifExpr != nil && unlessExpr != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Conflicting conditions",
			Detail:   "A process may set condition or unless, not both.",
			Subject:  unlessExpr.Range().Ptr(),
		}}
	}
	expr, build := ifExpr, launch.IfArgument
	if unlessExpr != nil {
		expr, build = unlessExpr, launch.UnlessArgument
	}
	if expr == nil {
		return launch.Always, nil
	}

	invalid := hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Invalid condition",
		Detail:   "A condition must be a reference to a launch argument, such as arg.use_map_server.",
		Subject:  expr.Range().Ptr(),
	}}
	trav, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(trav) != 2 {
		return nil, invalid
	}
	name, ok := lgexpr.ArgumentName(trav)
	if !ok {
		return nil, invalid
	}
	return build(name), nil
}

func (t *translator) translateParameterFile(block *hcl.Block) (launch.ParameterLayer, hcl.Diagnostics) {
	content, diags := block.Body.Content(parameterFileSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	sub, diags := t.substitution(content.Attributes["path"].Expr)
	if diags.HasErrors() {
		return nil, diags
	}
	return launch.FileLayer{Path: sub}, nil
}

// translateParameters builds an inline layer. Object values written as
// object constructors are flattened into dotted keys, matching how
// parameter files are read.
func (t *translator) translateParameters(block *hcl.Block) (launch.ParameterLayer, hcl.Diagnostics) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	entries := make(map[string]launch.Value, len(attrs))
	for name, attr := range attrs {
		diags = append(diags, t.addEntries(entries, name, attr.Expr)...)
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return launch.InlineLayer{Entries: entries}, nil
}

func (t *translator) addEntries(entries map[string]launch.Value, key string, expr hcl.Expression) hcl.Diagnostics {
	if obj, ok := expr.(*hclsyntax.ObjectConsExpr); ok {
		var diags hcl.Diagnostics
		for _, item := range obj.Items {
			var sub string
			if d := gohclDecode(item.KeyExpr, &sub); d.HasErrors() {
				diags = append(diags, d...)
				continue
			}
			diags = append(diags, t.addEntries(entries, key+"."+sub, item.ValueExpr)...)
		}
		return diags
	}

	if diags := t.check(expr); diags.HasErrors() {
		return diags
	}
	v, err := t.eval.value(expr)
	if err != nil {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid parameter value",
			Detail:   fmt.Sprintf("Parameter %q: %s", key, err),
			Subject:  expr.Range().Ptr(),
		}}
	}
	if _, dup := entries[key]; dup {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Duplicate parameter",
			Detail:   fmt.Sprintf("Parameter %q is set twice in the same block.", key),
			Subject:  expr.Range().Ptr(),
		}}
	}
	entries[key] = v
	return nil
}

func (t *translator) translateRemap(block *hcl.Block) (launch.Remapping, hcl.Diagnostics) {
	content, diags := block.Body.Content(remapSchema)
	if diags.HasErrors() {
		return launch.Remapping{}, diags
	}
	from, d1 := t.substitution(content.Attributes["from"].Expr)
	to, d2 := t.substitution(content.Attributes["to"].Expr)
	diags = append(d1, d2...)
	return launch.Remapping{From: from, To: to}, diags
}

func (t *translator) translateLifecycle(g *hclLifecycle) (launch.LifecycleGroup, hcl.Diagnostics) {
	group := launch.LifecycleGroup{
		Name:      g.Name,
		Manager:   g.Manager,
		NodeNames: g.NodeNames,
	}
	if isExprDefined(t.ctx, g.Autostart, "autostart") {
		if diags := t.check(g.Autostart); diags.HasErrors() {
			return group, diags
		}
		v, err := t.eval.value(g.Autostart)
		if err != nil {
			return group, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid autostart",
				Detail:   err.Error(),
				Subject:  g.Autostart.Range().Ptr(),
			}}
		}
		group.Autostart = v
	}
	return group, nil
}

func (t *translator) substitution(expr hcl.Expression) (launch.Substitution, hcl.Diagnostics) {
	if diags := t.check(expr); diags.HasErrors() {
		return nil, diags
	}
	return t.eval.substitution(expr, sourceText(t.files, expr.Range())), nil
}

// substitutionList turns a tuple expression into one substitution per
// element, so each element can read arguments on its own.
func (t *translator) substitutionList(expr hcl.Expression, attrName string) ([]launch.Substitution, hcl.Diagnostics) {
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, append(hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid " + attrName,
			Detail:   "The " + attrName + " attribute must be a list written as [...].",
			Subject:  expr.Range().Ptr(),
		}}, diags...)
	}
	out := make([]launch.Substitution, 0, len(items))
	for _, item := range items {
		sub, d := t.substitution(item)
		diags = append(diags, d...)
		out = append(out, sub)
	}
	return out, diags
}

// check rejects references to roots other than `arg` and calls to unknown
// functions. Undeclared argument names are left to launch.NewDescriptor.
func (t *translator) check(expr hcl.Expression) hcl.Diagnostics {
	c := lgexpr.Analyze(expr)
	var diags hcl.Diagnostics
	for _, trav := range c.ForeignRoots() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported reference",
			Detail: fmt.Sprintf("%q is not a launch argument. Expressions can only read arguments, as in %s.NAME.",
				strings.TrimSpace(lgexpr.TraversalKey(trav)), lgexpr.ArgRoot),
			Subject: trav.SourceRange().Ptr(),
		})
	}
	for _, name := range c.Functions {
		if _, ok := t.eval.functions[name]; !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Call to unknown function",
				Detail:   fmt.Sprintf("There is no function named %q.", name),
				Subject:  expr.Range().Ptr(),
			})
		}
	}
	return diags
}
