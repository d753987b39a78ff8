// Package lgexpr analyzes HCL expressions and reports what they reference:
// argument names read through the `arg` object and the functions they call.
package lgexpr

import "github.com/hashicorp/hcl/v2"

// ArgRoot is the root object through which expressions read resolved
// launch arguments, as in `arg.use_sim_time`.
const ArgRoot = "arg"

// Analysis holds the unique variable traversals and function calls found in
// a set of expressions.
type Analysis struct {
	References []hcl.Traversal
	Functions  []string
}

// Analyze walks exprs and collects what they reference. Nil expressions are
// ignored.
func Analyze(exprs ...hcl.Expression) Analysis {
	refs, funcs := extractReferencesAndFunctions(exprs...)
	return Analysis{References: refs, Functions: funcs}
}

// Static reports whether the expressions read nothing and call nothing, so
// they can be evaluated without a context.
func (a Analysis) Static() bool {
	return len(a.References) == 0 && len(a.Functions) == 0
}

// ArgumentNames returns the unique argument names read through `arg.NAME`
// traversals, sorted.
func (a Analysis) ArgumentNames() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, t := range a.References {
		name, ok := ArgumentName(t)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// ForeignRoots returns the traversals whose root is not ArgRoot, or which
// read ArgRoot without naming an argument.
func (a Analysis) ForeignRoots() []hcl.Traversal {
	var out []hcl.Traversal
	for _, t := range a.References {
		if _, ok := ArgumentName(t); !ok {
			out = append(out, t)
		}
	}
	return out
}
