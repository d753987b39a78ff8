package hcl_adapter

import (
	"path/filepath"

	"github.com/specialistvlad/launchgrid/internal/pkgindex"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions returns the function table available to descriptor expressions.
func functions(index *pkgindex.Index) map[string]function.Function {
	return map[string]function.Function{
		"path_join":     pathJoinFunc,
		"package_share": packageShareFunc(index),
		"upper":         stdlib.UpperFunc,
		"lower":         stdlib.LowerFunc,
		"format":        stdlib.FormatFunc,
		"join":          stdlib.JoinFunc,
		"coalesce":      stdlib.CoalesceFunc,
		"trimspace":     stdlib.TrimSpaceFunc,
	}
}

// pathJoinFunc joins its arguments with the OS path separator.
var pathJoinFunc = function.New(&function.Spec{
	VarParam: &function.Parameter{Name: "segments", Type: cty.String},
	Type:     function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.AsString()
		}
		return cty.StringVal(filepath.Join(parts...)), nil
	},
})

// packageShareFunc resolves a package's share directory through index.
func packageShareFunc(index *pkgindex.Index) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "package", Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			dir, err := index.Share(args[0].AsString())
			if err != nil {
				return cty.NilVal, function.NewArgError(0, err)
			}
			return cty.StringVal(dir), nil
		},
	})
}
