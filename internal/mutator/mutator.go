// Package mutator implements the four pure template-transformation
// operators: insert, delete, substitute, and fuse.
package mutator

import (
	"math/rand"
	"strings"

	"github.com/aledsdavies/jsfuzz/internal/astadapter"
	"github.com/aledsdavies/jsfuzz/internal/template"
)

// insertions is the fixed list insert_placeholder samples from when parsing
// succeeds.
var insertions = []string{
	"let <var> = <integer>;",
	"const <var> = <integer>;",
	"function <var>(){ return <integer>; } <var>();",
	"try { <var> = <integer>; } catch (e) {}",
	"for (let <var> = 0; <var> < <integer>; <var>++) { }",
	"({ toString(){ return <code_str>; } });",
}

// InsertPlaceholder parses t; if parsing succeeds, it chooses one statement
// node uniformly at random and one insertion template uniformly at random
// and splices it in. If parsing fails, it picks a line index uniformly in
// [0, nlines] of the raw source and inserts the literal statement
// "let <var> = <integer>;".
func InsertPlaceholder(t template.Template, rng *rand.Rand) template.Template {
	tree := astadapter.Parse([]byte(t.Source))
	if tree == nil {
		lines := strings.Split(t.Source, "\n")
		idx := rng.Intn(len(lines) + 1)
		var out []string
		out = append(out, lines[:idx]...)
		out = append(out, "let <var> = <integer>;")
		out = append(out, lines[idx:]...)
		return template.Template{Source: strings.Join(out, "\n")}
	}

	nodes := astadapter.StatementNodes(tree)
	node := nodes[rng.Intn(len(nodes))]
	insertion := insertions[rng.Intn(len(insertions))]
	return template.Template{Source: astadapter.InsertAt(tree.Source, node, insertion)}
}

// DeletePlaceholder finds the first occurrence of any vocabulary token
// (searching in vocabulary order) and removes just that occurrence.
func DeletePlaceholder(t template.Template) template.Template {
	src := t.Source
	for _, tok := range template.Vocabulary {
		if idx := strings.Index(src, tok); idx >= 0 {
			return template.Template{Source: src[:idx] + src[idx+len(tok):]}
		}
	}
	return t
}

// SubstitutePlaceholder chooses a vocabulary token uniformly at random and
// replaces every occurrence of it with another vocabulary token chosen
// uniformly at random. Choosing the same token as its own replacement is
// allowed, in which case the operation is an identity. Otherwise every
// occurrence of the chosen token is replaced, which removes that entire
// hole class from the template.
func SubstitutePlaceholder(t template.Template, rng *rand.Rand) template.Template {
	from := template.Vocabulary[rng.Intn(len(template.Vocabulary))]
	to := template.Vocabulary[rng.Intn(len(template.Vocabulary))]
	return template.Template{Source: strings.ReplaceAll(t.Source, from, to)}
}

// Fuse concatenates a and b with a single newline between them.
func Fuse(a, b template.Template) template.Template {
	return template.Template{Source: a.Source + "\n" + b.Source}
}
