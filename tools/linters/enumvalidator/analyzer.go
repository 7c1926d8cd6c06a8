// Package enumvalidator reports string literals assigned to struct fields
// whose type is a string enum, such as domain.ChangeKind or
// model.ForwardStatus. Use the declared constants instead.
package enumvalidator

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "enumvalidator",
	Doc:      "reports string literals assigned to fields of enum-like string types",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	filter := []ast.Node{(*ast.AssignStmt)(nil), (*ast.CompositeLit)(nil)}
	insp.Preorder(filter, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.AssignStmt:
			if len(n.Lhs) != len(n.Rhs) {
				return
			}
			for i, lhs := range n.Lhs {
				sel, ok := lhs.(*ast.SelectorExpr)
				if !ok {
					continue
				}
				if _, isField := pass.TypesInfo.ObjectOf(sel.Sel).(*types.Var); !isField {
					continue
				}
				check(pass, sel.Sel.Name, pass.TypesInfo.TypeOf(sel), n.Rhs[i])
			}
		case *ast.CompositeLit:
			for _, elt := range n.Elts {
				kv, ok := elt.(*ast.KeyValueExpr)
				if !ok {
					continue
				}
				key, ok := kv.Key.(*ast.Ident)
				if !ok {
					continue
				}
				field, ok := pass.TypesInfo.ObjectOf(key).(*types.Var)
				if !ok || !field.IsField() {
					continue
				}
				check(pass, key.Name, field.Type(), kv.Value)
			}
		}
	})
	return nil, nil
}

func check(pass *analysis.Pass, fieldName string, fieldType types.Type, value ast.Expr) {
	lit, ok := ast.Unparen(value).(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return
	}
	if !isEnum(fieldType) {
		return
	}
	pass.Reportf(lit.Pos(), "enum field %s assigned string literal %s; use a declared constant", fieldName, lit.Value)
}

// isEnum reports whether t is a named string type with at least one
// constant of that type declared in its package.
func isEnum(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	basic, ok := named.Underlying().(*types.Basic)
	if !ok || basic.Info()&types.IsString == 0 {
		return false
	}
	obj := named.Obj()
	if obj.Pkg() == nil {
		return false
	}
	scope := obj.Pkg().Scope()
	for _, name := range scope.Names() {
		if c, ok := scope.Lookup(name).(*types.Const); ok && types.Identical(c.Type(), named) {
			return true
		}
	}
	return false
}
