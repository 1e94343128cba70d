// Package astadapter wraps a tree-sitter JavaScript parser behind the
// narrow surface the rest of the pipeline needs: parse, enumerate
// statement-boundary nodes, and splice text before a node.
package astadapter

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Tree pairs a parsed syntax tree with the source bytes it was parsed from,
// since tree-sitter nodes only make sense relative to their source.
type Tree struct {
	Source []byte
	root   *sitter.Node
}

// statementKinds is the fixed vocabulary of node kinds statement_nodes
// retains, drawn from tree-sitter-javascript's grammar.
var statementKinds = map[string]bool{
	"statement_block":      true,
	"lexical_declaration":  true,
	"variable_declaration": true,
	"expression_statement": true,
	"if_statement":         true,
	"for_statement":        true,
	"for_in_statement":     true,
	"for_of_statement":     true,
	"while_statement":      true,
	"do_statement":         true,
	"return_statement":     true,
	"throw_statement":      true,
	"try_statement":        true,
	"function_declaration": true,
	"class_declaration":    true,
}

// Parse parses source as JavaScript and returns a Tree, or nil if parsing
// failed. Parse failure is never fatal to the caller: both the extractor
// and the insertion mutator fall back to regex/line-based paths.
func Parse(source []byte) *Tree {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return nil
	}
	root := tree.RootNode()
	if root == nil {
		return nil
	}
	return &Tree{Source: source, root: root}
}

// Root returns the tree's root node.
func (t *Tree) Root() *sitter.Node {
	return t.root
}

// StatementNodes performs a depth-first walk of t and returns every node
// whose kind is a statement boundary or a function/class declaration. If
// none exist, the root node is returned as the sole element so that
// insertion always has a target.
func StatementNodes(t *Tree) []*sitter.Node {
	var out []*sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if statementKinds[n.Type()] {
			out = append(out, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(t.root)

	if len(out) == 0 {
		return []*sitter.Node{t.root}
	}
	return out
}

// InsertAt splices text immediately before node's start byte offset within
// source, guaranteeing a newline precedes text when the preceding character
// isn't one, and a newline terminates text when it doesn't already end with
// one.
func InsertAt(source []byte, node *sitter.Node, text string) string {
	pos := int(node.StartByte())
	if pos > len(source) {
		pos = len(source)
	}

	var b strings.Builder
	b.Write(source[:pos])
	if pos > 0 && source[pos-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	b.Write(source[pos:])
	return b.String()
}
