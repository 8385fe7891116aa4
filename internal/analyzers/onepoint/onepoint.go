// Package onepoint implements an analyzer for Cloud Monitoring write requests.
//
// The metric service accepts one point per series per request. The analyzer
// reports CreateTimeSeriesRequest literals whose TimeSeries slice literal does
// not hold exactly one series, and TimeSeries literals whose Points slice
// literal does not hold exactly one point. Slices built elsewhere are not
// checked.
package onepoint

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const monitoringpbPath = "cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"

var Analyzer = &analysis.Analyzer{
	Name:     "onepoint",
	Doc:      "require exactly one series per CreateTimeSeriesRequest and one point per TimeSeries literal",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// checked maps literal type name to the slice field that must hold one element.
var checked = map[string]string{
	"CreateTimeSeriesRequest": "TimeSeries",
	"TimeSeries":              "Points",
}

func run(pass *analysis.Pass) (any, error) {
	ins := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	ins.Preorder([]ast.Node{(*ast.CompositeLit)(nil)}, func(n ast.Node) {
		lit := n.(*ast.CompositeLit)
		name, ok := monitoringType(pass.TypesInfo.TypeOf(lit))
		if !ok {
			return
		}
		field, ok := checked[name]
		if !ok {
			return
		}
		for _, elt := range lit.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				continue
			}
			key, ok := kv.Key.(*ast.Ident)
			if !ok || key.Name != field {
				continue
			}
			slice, ok := ast.Unparen(kv.Value).(*ast.CompositeLit)
			if !ok {
				continue
			}
			if len(slice.Elts) != 1 {
				pass.Reportf(slice.Pos(), "%s.%s literal has %d elements, the metric service accepts exactly one",
					name, field, len(slice.Elts))
			}
		}
	})
	return nil, nil
}

// monitoringType returns the monitoringpb type name behind t, looking
// through one pointer.
func monitoringType(t types.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	if p, ok := t.Underlying().(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return "", false
	}
	obj := named.Obj()
	if obj.Pkg() == nil || !strings.HasSuffix(obj.Pkg().Path(), monitoringpbPath) {
		return "", false
	}
	return obj.Name(), true
}
