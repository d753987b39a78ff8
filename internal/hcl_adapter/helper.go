package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/launchgrid/internal/ctxlog"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder often populates optional fields with non-nil, zero-width
// expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}

// isNullLiteral reports whether expr is a constant that evaluates to null,
// such as `default = null`.
func isNullLiteral(expr hcl.Expression) bool {
	if len(expr.Variables()) > 0 {
		return false
	}
	v, diags := expr.Value(nil)
	return !diags.HasErrors() && v.IsNull()
}

// attrExpr returns the expression of a named attribute, or nil when absent.
func attrExpr(attrs hcl.Attributes, name string) hcl.Expression {
	if a, ok := attrs[name]; ok {
		return a.Expr
	}
	return nil
}

// staticString evaluates an attribute that may not read arguments.
func staticString(expr hcl.Expression, attrName string) (string, hcl.Diagnostics) {
	if expr == nil {
		return "", nil
	}
	var s string
	diags := gohclDecode(expr, &s)
	if diags.HasErrors() {
		return "", append(hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid " + attrName,
			Detail:   "The " + attrName + " attribute must be a constant string.",
			Subject:  expr.Range().Ptr(),
		}}, diags...)
	}
	return s, nil
}
