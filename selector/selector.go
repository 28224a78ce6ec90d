// Package selector resolves member-selector expressions to the name of the
// single member they access.
//
// A selector is a Go expression string. The accepted shapes are
//
//	x.Name
//	(x.Name)
//	x => x.Name
//
// Anything that accesses no member, reaches through more than one member, or
// computes a value (calls, operators, indexing, literals) is rejected.
package selector

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/Station-Manager/errors"
)

const arrow = "=>"

// Resolve returns the name of the member accessed by expr.
func Resolve(expr string) (string, error) {
	const op errors.Op = "selector.Resolve"
	param, body, err := split(expr)
	if err != nil {
		return "", errors.New(op).Err(err)
	}

	node, perr := parser.ParseExpr(body)
	if perr != nil {
		return "", errors.New(op).Errorf("selector `%s` does not parse: %v", expr, perr)
	}

	sel, ok := unparen(node).(*ast.SelectorExpr)
	if !ok {
		return "", invalid(op, expr, node)
	}
	recv, ok := unparen(sel.X).(*ast.Ident)
	if !ok {
		return "", invalid(op, expr, node)
	}
	if recv.Name == "_" {
		return "", errors.New(op).Errorf("selector `%s` selects from the blank identifier", expr)
	}
	if param != "" && recv.Name != param {
		return "", errors.New(op).Errorf("selector `%s` does not select from its parameter %q", expr, param)
	}
	return sel.Sel.Name, nil
}

// MustResolve is like Resolve but panics when expr is not a valid selector.
// It is meant for package-level mapping tables.
func MustResolve(expr string) string {
	name, err := Resolve(expr)
	if err != nil {
		panic(err)
	}
	return name
}

// Count returns the number of member accesses found in node.
func Count(node ast.Node) int {
	n := 0
	ast.Inspect(node, func(x ast.Node) bool {
		if _, ok := x.(*ast.SelectorExpr); ok {
			n++
		}
		return true
	})
	return n
}

func invalid(op errors.Op, expr string, node ast.Node) error {
	if n := Count(node); n != 1 {
		return errors.New(op).Errorf("selector `%s` accesses %d members, want exactly 1", expr, n)
	}
	return errors.New(op).Errorf("selector `%s` is not a plain member access", expr)
}

// split separates an optional "param =>" prefix from the selector body.
func split(expr string) (string, string, error) {
	const op errors.Op = "selector.split"
	if strings.TrimSpace(expr) == "" {
		return "", "", errors.New(op).Msg("selector expression is empty")
	}
	head, body, found := strings.Cut(expr, arrow)
	if !found {
		return "", expr, nil
	}
	param := strings.TrimSpace(head)
	param = strings.TrimSuffix(strings.TrimPrefix(param, "("), ")")
	param = strings.TrimSpace(param)
	if !token.IsIdentifier(param) || param == "_" {
		return "", "", errors.New(op).Errorf("selector `%s` has an invalid parameter %q", expr, param)
	}
	if strings.TrimSpace(body) == "" {
		return "", "", errors.New(op).Errorf("selector `%s` has an empty body", expr)
	}
	return param, body, nil
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}
