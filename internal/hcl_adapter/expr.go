package hcl_adapter

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/specialistvlad/launchgrid/internal/lgexpr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"
)

// evaluator holds what every deferred expression of one descriptor shares:
// the function table. Argument values arrive per build.
type evaluator struct {
	functions map[string]function.Function
}

func (e *evaluator) context(args launch.Values) *hcl.EvalContext {
	vals := make(map[string]cty.Value, len(args))
	for k, v := range args {
		vals[k] = cty.StringVal(v)
	}
	obj := cty.EmptyObjectVal
	if len(vals) > 0 {
		obj = cty.ObjectVal(vals)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{lgexpr.ArgRoot: obj},
		Functions: e.functions,
	}
}

func (e *evaluator) eval(expr hcl.Expression, args launch.Values) (cty.Value, error) {
	v, diags := expr.Value(e.context(args))
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("%s: value is not known", expr.Range())
	}
	return v, nil
}

// exprSubstitution is a launch.Substitution backed by an HCL expression. The
// result is converted to a string, so `true` and `1` become "true" and "1".
type exprSubstitution struct {
	eval *evaluator
	expr hcl.Expression
	src  string
	refs []string
}

func (e *evaluator) substitution(expr hcl.Expression, src string) *exprSubstitution {
	return &exprSubstitution{
		eval: e,
		expr: expr,
		src:  src,
		refs: lgexpr.Analyze(expr).ArgumentNames(),
	}
}

func (s *exprSubstitution) Resolve(args launch.Values) (string, error) {
	v, err := s.eval.eval(s.expr, args)
	if err != nil {
		return "", err
	}
	if v.IsNull() {
		return "", fmt.Errorf("%s: value is null", s.expr.Range())
	}
	str, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s: expected a string: %w", s.expr.Range(), err)
	}
	return str.AsString(), nil
}

func (s *exprSubstitution) References() []string { return s.refs }

// String returns the expression's source text.
func (s *exprSubstitution) String() string {
	if s.src != "" {
		return s.src
	}
	return s.expr.Range().String()
}

// exprValue is a launch.Value backed by an HCL expression that reads
// arguments. Strings stay strings; other types are converted with ctyToNative.
type exprValue struct {
	eval *evaluator
	expr hcl.Expression
	refs []string
}

func (v *exprValue) ResolveValue(args launch.Values) (any, error) {
	val, err := v.eval.eval(v.expr, args)
	if err != nil {
		return nil, err
	}
	return ctyToNative(val)
}

func (v *exprValue) References() []string { return v.refs }

// value turns a parameter expression into a launch.Value. Expressions that
// read no arguments and call no functions are evaluated once, here.
func (e *evaluator) value(expr hcl.Expression) (launch.Value, error) {
	c := lgexpr.Analyze(expr)
	if c.Static() {
		v, diags := expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToNative(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", expr.Range(), err)
		}
		return launch.Static(native), nil
	}
	return &exprValue{eval: e, expr: expr, refs: c.ArgumentNames()}, nil
}

// ctyToNative recursively converts a cty.Value to its most natural Go
// counterpart. Whole numbers become int64, other numbers float64.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			nativeVal, err := ctyToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, nativeVal)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		goMap := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, val := it.Element()
			keyStr := key.AsString()
			nativeVal, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", keyStr, err)
			}
			goMap[keyStr] = nativeVal
		}
		return goMap, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}

// sourceText returns the bytes covered by rng, or "" when the file is unknown.
func sourceText(files map[string]*hcl.File, rng hcl.Range) string {
	f, ok := files[rng.Filename]
	if !ok || f == nil {
		return ""
	}
	return strings.TrimSpace(string(rng.SliceBytes(f.Bytes)))
}
