package fuzzerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatsWithoutCause(t *testing.T) {
	err := New(KindNoSeeds, "no seeds found")
	assert.Equal(t, "no_seeds: no seeds found", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestErrorFormatsWithCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(KindSeedRead, cause, "reading seed file")

	assert.Contains(t, err.Error(), "seed_read")
	assert.Contains(t, err.Error(), "reading seed file")
	assert.Contains(t, err.Error(), "permission denied")
	assert.Equal(t, cause, err.Unwrap())
}

func TestErrorUnwrapsViaStdlib(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindSpawn, cause, "spawning engine")

	assert.True(t, errors.Is(err, cause))
}
