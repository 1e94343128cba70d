package astadapter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidSource(t *testing.T) {
	tree := Parse([]byte("let x = 1;"))
	require.NotNil(t, tree)
	assert.NotNil(t, tree.Root())
}

func TestStatementNodesFallsBackToRoot(t *testing.T) {
	tree := Parse([]byte(""))
	require.NotNil(t, tree)

	nodes := StatementNodes(tree)
	require.Len(t, nodes, 1)
	assert.Equal(t, tree.Root(), nodes[0])
}

func TestStatementNodesFindsDeclarations(t *testing.T) {
	tree := Parse([]byte("let x = 1;\nfunction f(){}\n"))
	require.NotNil(t, tree)

	nodes := StatementNodes(tree)
	require.NotEmpty(t, nodes)

	var kinds []string
	for _, n := range nodes {
		kinds = append(kinds, n.Type())
	}
	assert.Contains(t, kinds, "lexical_declaration")
	assert.Contains(t, kinds, "function_declaration")
}

func TestInsertAtAddsSurroundingNewlines(t *testing.T) {
	tree := Parse([]byte("let x = 1;"))
	require.NotNil(t, tree)

	nodes := StatementNodes(tree)
	require.NotEmpty(t, nodes)

	out := InsertAt(tree.Source, nodes[0], "const y = 2;")
	assert.True(t, strings.HasPrefix(out, "const y = 2;\n") || strings.Contains(out, "\nconst y = 2;\n"))
	assert.Contains(t, out, "let x = 1;")
}
