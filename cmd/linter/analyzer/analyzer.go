package analyzer

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/ast/inspector"
)

const (
	analyzerName = "danglingtimer"
	analyzerDoc  = "reports time.AfterFunc calls whose *time.Timer is discarded, leaving the callback impossible to cancel"
)

// Analyzer reports time.AfterFunc timers that nothing can stop.
var Analyzer = &analysis.Analyzer{
	Name:     analyzerName,
	Doc:      analyzerDoc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.ExprStmt)(nil),
		(*ast.AssignStmt)(nil),
		(*ast.GoStmt)(nil),
		(*ast.DeferStmt)(nil),
	}

	insp.Preorder(nodeFilter, func(node ast.Node) {
		switch stmt := node.(type) {
		case *ast.ExprStmt:
			if call, ok := astutil.Unparen(stmt.X).(*ast.CallExpr); ok {
				report(pass, call)
			}
		case *ast.GoStmt:
			report(pass, stmt.Call)
		case *ast.DeferStmt:
			report(pass, stmt.Call)
		case *ast.AssignStmt:
			checkAssign(pass, stmt)
		}
	})

	return nil, nil
}

func checkAssign(pass *analysis.Pass, stmt *ast.AssignStmt) {
	if len(stmt.Lhs) != len(stmt.Rhs) {
		return
	}

	for i, rhs := range stmt.Rhs {
		call, ok := astutil.Unparen(rhs).(*ast.CallExpr)
		if !ok {
			continue
		}
		if ident, ok := stmt.Lhs[i].(*ast.Ident); ok && ident.Name == "_" {
			report(pass, call)
		}
	}
}

func report(pass *analysis.Pass, call *ast.CallExpr) {
	if isAfterFunc(pass, call) {
		pass.Reportf(call.Pos(), "result of time.AfterFunc is discarded; keep the timer to stop it")
	}
}

func isAfterFunc(pass *analysis.Pass, call *ast.CallExpr) bool {
	selector, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || pass.TypesInfo == nil {
		return false
	}

	fn, ok := pass.TypesInfo.Uses[selector.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}

	return fn.Pkg().Path() == "time" && fn.Name() == "AfterFunc"
}
