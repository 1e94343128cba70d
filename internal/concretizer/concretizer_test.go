package concretizer

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aledsdavies/jsfuzz/internal/template"
)

func TestConcretizeLeavesNoHoleTokens(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tpl := template.Template{Source: "let <var> = <integer>; <var>.toString = function(){ return <code_str>; };"}

	out := Concretize(tpl, rng)

	for _, hole := range template.Vocabulary {
		assert.NotContains(t, out, hole)
	}
}

func TestConcretizeIntegerWithinRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	tpl := template.Template{Source: "let x = <integer>;"}

	out := Concretize(tpl, rng)

	numStr := strings.TrimSuffix(strings.TrimPrefix(out, "let x = "), ";")
	n, err := strconv.Atoi(numStr)

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, n, integerMin)
	assert.LessOrEqual(t, n, integerMax)
}

func TestConcretizeCodeStrIsOneOfFourSnippets(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tpl := template.Template{Source: "x(<code_str>);"}

	out := Concretize(tpl, rng)

	found := false
	for _, snippet := range codeStrSnippets {
		if strings.Contains(out, snippet) {
			found = true
			break
		}
	}
	assert.True(t, found)
}

func TestIdentifierPoolExcludesKeywords(t *testing.T) {
	pool := identifierPool("let const var function class try catch for return myVar")

	for keyword := range keywordStoplist {
		assert.NotContains(t, pool, keyword)
	}
	assert.Contains(t, pool, "myVar")
}
