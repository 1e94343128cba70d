package harness

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests drive /bin/sh directly so they exercise the real subprocess
// path rather than a mock.

func TestRunCapturesExitStatusAndOutput(t *testing.T) {
	engine := New(Config{
		Cmd:     "/bin/sh",
		Args:    []string{"-c", `echo out; echo err 1>&2; exit 3`},
		Timeout: 2 * time.Second,
	})

	outcome, err := engine.Run("ignored for this script")
	require.NoError(t, err)

	assert.False(t, outcome.TimedOut)
	assert.Equal(t, 3, outcome.Status)
	assert.Contains(t, outcome.Stdout, "out")
	assert.Contains(t, outcome.Stderr, "err")
}

func TestRunKillsOnTimeout(t *testing.T) {
	engine := New(Config{
		Cmd:     "/bin/sh",
		Args:    []string{"-c", `sleep 5`},
		Timeout: 50 * time.Millisecond,
	})

	outcome, err := engine.Run("ignored")
	require.NoError(t, err)

	want := Outcome{Status: -1, TimedOut: true, Stdout: "", Stderr: "timeout"}
	if diff := cmp.Diff(want, outcome); diff != "" {
		t.Errorf("Outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestRunReportsSpawnFailure(t *testing.T) {
	engine := New(Config{
		Cmd:     "/no/such/binary-jsfuzz-test",
		Timeout: time.Second,
	})

	_, err := engine.Run("ignored")
	assert.Error(t, err)
}

func TestRunWithExtraArgsInsertsBeforeProgramPath(t *testing.T) {
	engine := New(Config{
		Cmd:     "/bin/sh",
		Args:    []string{"-c", `echo "$@"`, "--"},
		Timeout: 2 * time.Second,
	})

	outcome, err := engine.RunWithExtraArgs("ignored", []string{"--score"})
	require.NoError(t, err)
	assert.Contains(t, outcome.Stdout, "--score")
}
