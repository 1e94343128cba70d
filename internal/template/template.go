// Package template defines the Template type and the extractor that turns
// a concrete JavaScript program into one.
package template

import (
	"math/rand"
	"regexp"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aledsdavies/jsfuzz/internal/astadapter"
	"github.com/aledsdavies/jsfuzz/internal/dataflow"
)

// Hole token vocabulary. Order matters: delete_placeholder in
// internal/mutator searches in this order.
const (
	HoleVar     = "<var>"
	HoleInteger = "<integer>"
	HoleCodeStr = "<code_str>"
)

// Vocabulary is the closed, ordered set of hole tokens.
var Vocabulary = []string{HoleVar, HoleInteger, HoleCodeStr}

// Template is an immutable program skeleton over ordinary JS source and
// hole tokens. Every mutation produces a new value.
type Template struct {
	Source string
}

var (
	numberLiteralRe = regexp.MustCompile(`\b\d+\b`)
	letDeclRe       = regexp.MustCompile(`\blet\s+([A-Za-z_]\w*)`)
)

// declNamingParents are the three parent kinds whose identifier child is a
// declaration name, eligible to become <var>.
var declNamingParents = map[string]bool{
	"variable_declarator":  true,
	"function_declaration": true,
	"class_declaration":    true,
}

type edit struct {
	start, end  int
	replacement string
}

// Extract converts a concrete source string into a Template.
//
// The primary path parses source, replaces every numeric-literal node and a
// def/use-weighted sample of declaration identifiers with holes, and applies
// the edits right-to-left so earlier byte offsets stay valid. If parsing
// fails, it falls back to two regex passes over the raw source.
func Extract(source string, rng *rand.Rand) Template {
	tree := astadapter.Parse([]byte(source))
	if tree == nil {
		return extractFallback(source)
	}

	report := dataflow.Analyze(tree)
	total := report.Total()

	var edits []edit
	walkCollect(tree, tree.Root(), report, total, rng, &edits)

	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })

	out := []byte(source)
	for _, e := range edits {
		var buf []byte
		buf = append(buf, out[:e.start]...)
		buf = append(buf, e.replacement...)
		buf = append(buf, out[e.end:]...)
		out = buf
	}
	return Template{Source: string(out)}
}

func walkCollect(tree *astadapter.Tree, n *sitter.Node, report *dataflow.Report, total int, rng *rand.Rand, edits *[]edit) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "number":
		*edits = append(*edits, edit{
			start:       int(n.StartByte()),
			end:         int(n.EndByte()),
			replacement: HoleInteger,
		})
	case "identifier":
		parent := n.Parent()
		if parent != nil && declNamingParents[parent.Type()] {
			name := string(tree.Source[n.StartByte():n.EndByte()])
			p := sampleProbability(report.Dfcomp(name), total)
			if rng.Float64() < p {
				*edits = append(*edits, edit{
					start:       int(n.StartByte()),
					end:         int(n.EndByte()),
					replacement: HoleVar,
				})
			}
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		walkCollect(tree, n.Child(i), report, total, rng, edits)
	}
}

// sampleProbability computes p = dfcomp(name) / (total/8), the acceptance
// probability for parameterizing a declaration identifier. A zero total
// (no identifiers observed) yields probability 0 rather than dividing by
// zero.
func sampleProbability(weight, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(weight) / (float64(total) / 8.0)
}

func extractFallback(source string) Template {
	out := numberLiteralRe.ReplaceAllString(source, HoleInteger)
	out = letDeclRe.ReplaceAllString(out, "let "+HoleVar)
	return Template{Source: out}
}
