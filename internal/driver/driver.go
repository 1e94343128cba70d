// Package driver glues the pipeline together: it samples seeds, composes
// extraction, mutation, concretization, execution and triage, and
// accumulates run counters.
package driver

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"

	"github.com/fxamacker/cbor/v2"

	"github.com/aledsdavies/jsfuzz/internal/concretizer"
	"github.com/aledsdavies/jsfuzz/internal/config"
	"github.com/aledsdavies/jsfuzz/internal/fuzzerr"
	"github.com/aledsdavies/jsfuzz/internal/harness"
	"github.com/aledsdavies/jsfuzz/internal/minimizer"
	"github.com/aledsdavies/jsfuzz/internal/mutator"
	"github.com/aledsdavies/jsfuzz/internal/template"
	"github.com/aledsdavies/jsfuzz/internal/triage"
)

// fuseProbability is the per-iteration chance of fusing a second seed's
// template onto the first.
const fuseProbability = 0.2

// progressInterval is how often a progress line is emitted.
const progressInterval = 100

// Counters accumulates the three headline numbers reported during and at
// the end of a run.
type Counters struct {
	SyntaxErrors  uint64 `cbor:"syntax_errors"`
	UniqueCrashes uint64 `cbor:"unique_crashes"`
	Timeouts      uint64 `cbor:"timeouts"`
}

// Driver runs the full generation-execution-triage loop.
type Driver struct {
	cfg        config.Config
	rng        *rand.Rand
	progress   io.Writer
	seeds      []string
	engine     *harness.Engine
	seen       *triage.Seen
	scoreRegex *regexp.Regexp
	bestScore  int
	counters   Counters
}

// New builds a Driver, discovering seed paths under cfg.SeedsDir and
// creating cfg.OutDir if absent. Either failure is startup-fatal.
func New(cfg config.Config, rng *rand.Rand, progress io.Writer) (*Driver, error) {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, fuzzerr.Wrap(fuzzerr.KindOutputDir, err, "creating output directory")
	}

	seeds, err := loadSeedPaths(cfg.SeedsDir)
	if err != nil {
		return nil, err
	}

	var scoreRegex *regexp.Regexp
	if cfg.ScoreRegex != "" {
		compiled, err := regexp.Compile(cfg.ScoreRegex)
		if err != nil {
			return nil, fuzzerr.Wrap(fuzzerr.KindBadRegex, err, "compiling score regex")
		}
		scoreRegex = compiled
	}

	engine := harness.New(harness.Config{
		Cmd:     cfg.EngineCmd,
		Args:    cfg.EngineArgs,
		Timeout: cfg.Timeout,
	})

	return &Driver{
		cfg:        cfg,
		rng:        rng,
		progress:   progress,
		seeds:      seeds,
		engine:     engine,
		seen:       triage.NewSeen(),
		scoreRegex: scoreRegex,
	}, nil
}

// loadSeedPaths walks dir for regular files with a .js extension. An empty
// result is startup-fatal.
func loadSeedPaths(dir string) ([]string, error) {
	var seeds []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".js" {
			seeds = append(seeds, path)
		}
		return nil
	})
	if err != nil {
		return nil, fuzzerr.Wrap(fuzzerr.KindSeedRead, err, "walking seed directory")
	}
	if len(seeds) == 0 {
		return nil, fuzzerr.New(fuzzerr.KindNoSeeds, "no .js files found under seeds directory")
	}
	return seeds, nil
}

// Run executes cfg.Iterations iterations of the pipeline, returning the
// final counters. A per-iteration I/O failure (seed read, temp write,
// engine spawn) aborts the run and is returned as an error.
func (d *Driver) Run() (Counters, error) {
	for i := uint64(0); i < d.cfg.Iterations; i++ {
		if err := d.iterate(i); err != nil {
			return d.counters, err
		}
		if (i+1)%progressInterval == 0 {
			d.emitProgress(i + 1)
		}
	}
	d.emitProgress(d.cfg.Iterations)
	return d.counters, nil
}

func (d *Driver) emitProgress(iter uint64) {
	fmt.Fprintf(d.progress, "iter %d | syntax=%d unique_crashes=%d timeouts=%d\n",
		iter, d.counters.SyntaxErrors, d.counters.UniqueCrashes, d.counters.Timeouts)
}

func (d *Driver) iterate(i uint64) error {
	seedA, err := d.readRandomSeed()
	if err != nil {
		return err
	}
	tpl := template.Extract(seedA, d.rng)

	if d.rng.Float64() < fuseProbability {
		seedB, err := d.readRandomSeed()
		if err != nil {
			return err
		}
		tplB := template.Extract(seedB, d.rng)
		tpl = mutator.Fuse(tpl, tplB)
	}

	switch d.rng.Intn(3) {
	case 0:
		tpl = mutator.InsertPlaceholder(tpl, d.rng)
	case 1:
		tpl = mutator.DeletePlaceholder(tpl)
	case 2:
		tpl = mutator.SubstitutePlaceholder(tpl, d.rng)
	}

	program := concretizer.Concretize(tpl, d.rng)

	outcome, err := d.engine.Run(program)
	if err != nil {
		return err
	}

	verdict := triage.Classify(outcome)
	if verdict.IsSyntaxErr {
		d.counters.SyntaxErrors++
	}

	switch verdict.Kind {
	case triage.Timeout:
		if !d.coverageGateAccepts(program) {
			return nil
		}
		d.counters.Timeouts++
		if d.seen.Insert(verdict.Signature) {
			return d.recordArtifact("timeout", i, verdict.Signature, program, outcome.Stderr)
		}
	case triage.Crash:
		if !d.coverageGateAccepts(program) {
			return nil
		}
		if d.seen.Insert(verdict.Signature) {
			d.counters.UniqueCrashes++
			minimized := d.minimize(program, verdict.Signature)
			return d.recordArtifact("crash", i, verdict.Signature, minimized, outcome.Stderr)
		}
	}
	return nil
}

// coverageGateAccepts reports whether the current program may be accepted
// for further processing (dedup, artifact recording). When no coverage
// scorer is configured, or keep_only_increasing is unset, every candidate
// passes. Otherwise the candidate's score must strictly exceed the running
// best score, which is then updated.
func (d *Driver) coverageGateAccepts(program string) bool {
	if d.scoreRegex == nil || !d.cfg.KeepOnlyIncreasing {
		return true
	}
	scored, err := d.scoreProgram(program)
	if err != nil || scored <= d.bestScore {
		return false
	}
	d.bestScore = scored
	return true
}

func (d *Driver) scoreProgram(program string) (int, error) {
	outcome, err := d.engine.RunWithExtraArgs(program, d.cfg.ScoreCmdArgs)
	if err != nil {
		return 0, err
	}
	return minimizer.Score(d.scoreRegex, outcome.Stdout, outcome.Stderr), nil
}

func (d *Driver) minimize(program, signature string) string {
	if d.cfg.MinimizeBy == "coverage" && d.scoreRegex != nil {
		target, err := d.scoreProgram(program)
		if err != nil {
			return program
		}
		oracle := minimizer.CoveragePreservingOracle(d.scoreRegex, target)
		run := func(candidate string) (harness.Outcome, error) {
			return d.engine.RunWithExtraArgs(candidate, d.cfg.ScoreCmdArgs)
		}
		return minimizer.Minimize(program, run, oracle)
	}

	oracle := minimizer.SignaturePreservingOracle(signature)
	run := func(candidate string) (harness.Outcome, error) {
		return d.engine.Run(candidate)
	}
	return minimizer.Minimize(program, run, oracle)
}

func (d *Driver) recordArtifact(kind string, iter uint64, signature, program, stderr string) error {
	basename := fmt.Sprintf("%s_iter%d_sig%s", kind, iter, signature[:8])

	jsPath := filepath.Join(d.cfg.OutDir, basename+".js")
	if err := os.WriteFile(jsPath, []byte(program), 0o644); err != nil {
		return fuzzerr.Wrap(fuzzerr.KindTempWrite, err, "writing artifact program")
	}

	stderrPath := filepath.Join(d.cfg.OutDir, basename+".stderr.txt")
	if err := os.WriteFile(stderrPath, []byte(stderr), 0o644); err != nil {
		return fuzzerr.Wrap(fuzzerr.KindTempWrite, err, "writing artifact stderr")
	}
	return nil
}

func (d *Driver) readRandomSeed() (string, error) {
	path := d.seeds[d.rng.Intn(len(d.seeds))]
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fuzzerr.Wrap(fuzzerr.KindSeedRead, err, "reading seed file")
	}
	return string(content), nil
}

// WriteSummary persists the final counters as summary.cbor in the output
// directory, a compact machine-readable artifact alongside the
// human-readable progress lines already emitted to the diagnostic stream.
func (d *Driver) WriteSummary() error {
	data, err := cbor.Marshal(d.counters)
	if err != nil {
		return fuzzerr.Wrap(fuzzerr.KindTempWrite, err, "encoding summary.cbor")
	}
	path := filepath.Join(d.cfg.OutDir, "summary.cbor")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fuzzerr.Wrap(fuzzerr.KindTempWrite, err, "writing summary.cbor")
	}
	return nil
}
