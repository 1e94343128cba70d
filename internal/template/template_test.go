package template

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var tokenRe = regexp.MustCompile(`<[a-z_]+>`)

func TestExtractFallbackProducesExactTemplate(t *testing.T) {
	got := extractFallback("let count = 99; foo(1);")
	want := Template{Source: "let <var> = <integer>; foo(<integer>);"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Template mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractProducesOnlyVocabularyTokens(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tpl := Extract("let total = 42;\nfunction run(){ return 7; }", rng)

	for _, tok := range tokenRe.FindAllString(tpl.Source, -1) {
		assert.Contains(t, Vocabulary, tok)
	}
}

func TestExtractFallbackReplacesIntegersAndLetDecl(t *testing.T) {
	tpl := extractFallback("let count = 99; foo(1);")

	assert.Contains(t, tpl.Source, HoleInteger)
	assert.Contains(t, tpl.Source, "let "+HoleVar)
}

func TestSampleProbabilityZeroTotalIsZero(t *testing.T) {
	assert.Equal(t, 0.0, sampleProbability(5, 0))
}

func TestSampleProbabilityScalesByEighth(t *testing.T) {
	// weight == total means p = total / (total/8) = 8, well above 1 —
	// the uniform draw in [0,1) always accepts such a dominant identifier.
	assert.Equal(t, 8.0, sampleProbability(16, 16))
}
