// Package harness runs a concrete JavaScript program through a target
// engine subprocess under a wall-clock timeout.
package harness

import (
	"bytes"
	"os"
	"os/exec"
	"time"

	"github.com/aledsdavies/jsfuzz/internal/fuzzerr"
)

// Outcome is the immutable result of one engine invocation.
type Outcome struct {
	Status   int
	TimedOut bool
	Stdout   string
	Stderr   string
}

// Config is the engine subprocess configuration: a command path, a fixed
// argument prefix, and a wall-clock timeout applied to every run.
type Config struct {
	Cmd     string
	Args    []string
	Timeout time.Duration
}

// Engine runs programs against one configured target.
type Engine struct {
	cfg Config
}

// New builds an Engine from cfg.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run writes program to a temporary file and invokes the configured engine
// on it, enforcing the configured timeout.
func (e *Engine) Run(program string) (Outcome, error) {
	return e.run(program, nil)
}

// RunWithExtraArgs behaves like Run but inserts extra arguments between the
// configured argument prefix and the program path. It is used exclusively
// for coverage-scoring passes.
func (e *Engine) RunWithExtraArgs(program string, extra []string) (Outcome, error) {
	return e.run(program, extra)
}

func (e *Engine) run(program string, extra []string) (Outcome, error) {
	tmp, err := os.CreateTemp("", "jsfuzz-*.js")
	if err != nil {
		return Outcome{}, fuzzerr.Wrap(fuzzerr.KindTempWrite, err, "creating temp program file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(program); err != nil {
		tmp.Close()
		return Outcome{}, fuzzerr.Wrap(fuzzerr.KindTempWrite, err, "writing temp program file")
	}
	if err := tmp.Close(); err != nil {
		return Outcome{}, fuzzerr.Wrap(fuzzerr.KindTempWrite, err, "closing temp program file")
	}

	argv := make([]string, 0, len(e.cfg.Args)+len(extra)+1)
	argv = append(argv, e.cfg.Args...)
	argv = append(argv, extra...)
	argv = append(argv, tmp.Name())

	cmd := exec.Command(e.cfg.Cmd, argv...)
	configureProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Outcome{}, fuzzerr.Wrap(fuzzerr.KindSpawn, err, "spawning engine")
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case waitErr := <-done:
		status := exitStatus(cmd, waitErr)
		return Outcome{
			Status:   status,
			TimedOut: false,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}, nil
	case <-time.After(e.cfg.Timeout):
		killProcessGroup(cmd)
		<-done
		return Outcome{
			Status:   -1,
			TimedOut: true,
			Stdout:   "",
			Stderr:   "timeout",
		}, nil
	}
}

// exitStatus extracts a process exit code from cmd/waitErr, returning -1
// when the process didn't exit normally (e.g. killed by signal).
func exitStatus(cmd *exec.Cmd, waitErr error) int {
	if waitErr == nil {
		if cmd.ProcessState != nil {
			return cmd.ProcessState.ExitCode()
		}
		return 0
	}
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
