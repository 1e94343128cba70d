package dataflow

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/jsfuzz/internal/astadapter"
)

func TestAnalyzeCountsDefinitions(t *testing.T) {
	tree := astadapter.Parse([]byte("let count = 1; function helper(){} class Widget {}"))
	require.NotNil(t, tree)

	report := Analyze(tree)

	want := map[string]int{"count": 1, "helper": 1, "Widget": 1}
	if diff := cmp.Diff(want, report.DefCount); diff != "" {
		t.Errorf("DefCount mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeCountsUses(t *testing.T) {
	tree := astadapter.Parse([]byte("let x = 1; y = x + x;"))
	require.NotNil(t, tree)

	report := Analyze(tree)

	assert.GreaterOrEqual(t, report.UseCount["x"], 2)
}

func TestDfcompIsElementwiseSum(t *testing.T) {
	report := &Report{
		DefCount: map[string]int{"a": 3},
		UseCount: map[string]int{"a": 4},
	}
	assert.Equal(t, 7, report.Dfcomp("a"))
}

func TestTotalSumsAcrossAllIdentifiers(t *testing.T) {
	report := &Report{
		DefCount: map[string]int{"a": 1, "b": 2},
		UseCount: map[string]int{"a": 1, "c": 5},
	}
	assert.Equal(t, 9, report.Total())
}
