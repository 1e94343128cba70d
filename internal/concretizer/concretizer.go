// Package concretizer instantiates every hole in a template, producing a
// runnable JavaScript program.
package concretizer

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/aledsdavies/jsfuzz/internal/template"
)

const (
	integerMin = -10000
	integerMax = 10000
)

// fallbackPool is appended to every identifier pool so <var> always has
// candidates even when the template has no surviving identifiers.
var fallbackPool = []string{"a", "b", "c", "x", "y", "z", "tmp", "obj", "v"}

// keywordStoplist is discarded from the identifier pool built from the
// template text, since these are JS keywords, not identifiers.
var keywordStoplist = map[string]bool{
	"let": true, "const": true, "var": true, "function": true,
	"class": true, "try": true, "catch": true, "for": true, "return": true,
}

var codeStrSnippets = []string{
	`"let k = 1;"`,
	`"class C{}"`,
	`"({a:1})"`,
	`"function f(){}"`,
}

var identifierRe = regexp.MustCompile(`\b[A-Za-z_]\w*\b`)

// Concretize replaces every hole token in t with a concrete lexeme until
// none remain, producing a runnable program. <integer> holes draw a uniform
// signed integer in [-10000, 10000]. <var> holes draw independently (per
// occurrence, no substitution table) from a pool built once from the
// template plus a fixed fallback pool. <code_str> holes draw one of four
// literal quoted snippets.
func Concretize(t template.Template, rng *rand.Rand) string {
	out := t.Source

	pool := identifierPool(out)

	for strings.Contains(out, template.HoleInteger) {
		n := rng.Intn(integerMax-integerMin+1) + integerMin
		out = strings.Replace(out, template.HoleInteger, fmt.Sprintf("%d", n), 1)
	}

	for strings.Contains(out, template.HoleVar) {
		name := pool[rng.Intn(len(pool))]
		out = strings.Replace(out, template.HoleVar, name, 1)
	}

	for strings.Contains(out, template.HoleCodeStr) {
		snippet := codeStrSnippets[rng.Intn(len(codeStrSnippets))]
		out = strings.Replace(out, template.HoleCodeStr, snippet, 1)
	}

	return out
}

// identifierPool builds the <var> candidate pool from source once, before
// any substitution happens. Every occurrence of every matched identifier is
// pushed, not just the distinct names, so a name appearing more often in
// the template is proportionally more likely to be redrawn.
func identifierPool(source string) []string {
	var pool []string
	for _, name := range identifierRe.FindAllString(source, -1) {
		if keywordStoplist[name] {
			continue
		}
		pool = append(pool, name)
	}
	pool = append(pool, fallbackPool...)
	return pool
}
