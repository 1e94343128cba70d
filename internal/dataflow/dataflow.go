// Package dataflow computes per-identifier definition/use counts over a
// parsed JavaScript tree, driving the extractor's sampling weight.
package dataflow

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aledsdavies/jsfuzz/internal/astadapter"
)

// declNamingKinds are the three node kinds whose "name" child is a
// definition, not a use.
var declNamingKinds = map[string]bool{
	"variable_declarator":  true,
	"function_declaration": true,
	"class_declaration":    true,
}

// Report holds per-identifier definition and use counts.
type Report struct {
	DefCount map[string]int
	UseCount map[string]int
}

// Dfcomp returns the elementwise sum of DefCount and UseCount: the
// composite weight used by the extractor's sampling decision.
func (r *Report) Dfcomp(name string) int {
	return r.DefCount[name] + r.UseCount[name]
}

// Total returns the sum of Dfcomp over every identifier observed.
func (r *Report) Total() int {
	total := 0
	names := make(map[string]bool, len(r.DefCount)+len(r.UseCount))
	for n := range r.DefCount {
		names[n] = true
	}
	for n := range r.UseCount {
		names[n] = true
	}
	for n := range names {
		total += r.Dfcomp(n)
	}
	return total
}

// Analyze walks t collecting definition and use events.
//
// A definition event fires for the identifier bound as the name child of a
// variable_declarator, the name of a function_declaration, the name of a
// class_declaration, or the left-hand identifier of an assignment_expression.
// Every identifier node whose parent is not a variable_declarator,
// function_declaration or class_declaration counts as a use (so the
// initializer in `let a = b` is not counted). This deliberately overcounts
// (an assignment's LHS is both handled explicitly as a def and still visited
// as a plain identifier node during the walk) since the result only drives a
// heuristic sampling weight.
func Analyze(t *astadapter.Tree) *Report {
	report := &Report{DefCount: map[string]int{}, UseCount: map[string]int{}}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		switch n.Type() {
		case "variable_declarator":
			if name := identifierText(t, n.ChildByFieldName("name")); name != "" {
				report.DefCount[name]++
			}
		case "function_declaration", "class_declaration":
			if name := identifierText(t, n.ChildByFieldName("name")); name != "" {
				report.DefCount[name]++
			}
		case "assignment_expression":
			if name := identifierText(t, n.ChildByFieldName("left")); name != "" {
				report.DefCount[name]++
			}
		case "identifier":
			parent := n.Parent()
			if parent == nil || !declNamingKinds[parent.Type()] {
				report.UseCount[string(t.Source[n.StartByte():n.EndByte()])]++
			}
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(t.Root())

	return report
}

func identifierText(t *astadapter.Tree, n *sitter.Node) string {
	if n == nil || n.Type() != "identifier" {
		return ""
	}
	return string(t.Source[n.StartByte():n.EndByte()])
}
