// Command jsfuzz generates, executes, and triages synthetic JavaScript
// programs against a target engine, retaining minimized reproducers for
// crashes and timeouts.
package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/aledsdavies/jsfuzz/internal/config"
	"github.com/aledsdavies/jsfuzz/internal/driver"
	"github.com/aledsdavies/jsfuzz/internal/fuzzerr"
)

// Exit code constants, following the small enumerated set the teacher's own
// CLI entry points use.
const (
	exitSuccess    = 0
	exitBadArgs    = 1
	exitStartup    = 2
	exitRunFailure = 3
)

var minimizeByValues = []string{"signature", "coverage"}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfg        config.Config
		configFile string
	)

	rootCmd := &cobra.Command{
		Use:           "jsfuzz",
		Short:         "Template-based differential fuzzer for JavaScript engines",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuzz(cmd, &cfg, configFile)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&cfg.EngineCmd, "engine-cmd", "", "JS engine command (e.g. d8, jsc, js)")
	flags.Var(newSpaceDelimitedFlag(&cfg.EngineArgs), "engine-args", "additional space-delimited args for the engine")
	flags.StringVar(&cfg.SeedsDir, "seeds", "", "seed corpus directory (contains .js files)")
	flags.StringVar(&cfg.OutDir, "out", "", "output directory for artifacts")
	flags.Uint64Var(&cfg.Iterations, "iters", 1000, "number of iterations to run")
	flags.DurationVar(&cfg.Timeout, "timeout", 500*time.Millisecond, "per-run timeout")
	flags.Var(newSpaceDelimitedFlag(&cfg.ScoreCmdArgs), "score-cmd-args", "space-delimited extra args for the coverage-scoring pass")
	flags.StringVar(&cfg.ScoreRegex, "score-regex", "", "regex extracting a numeric coverage score; empty disables coverage scoring")
	flags.BoolVar(&cfg.KeepOnlyIncreasing, "keep-only-increasing", false, "keep only coverage-increasing inputs (requires --score-regex)")
	flags.StringVar(&cfg.MinimizeBy, "minimize-by", "signature", "minimizer oracle: signature|coverage")
	flags.StringVar(&configFile, "config", "", "optional JSON config file; explicit flags override it")

	if err := rootCmd.Execute(); err != nil {
		return reportAndClassify(err)
	}
	return exitSuccess
}

func runFuzz(cmd *cobra.Command, cfg *config.Config, configFile string) error {
	if configFile != "" {
		overrides, err := config.LoadFile(configFile)
		if err != nil {
			return err
		}
		if err := overrides.Apply(cfg, cmd.Flags().Changed); err != nil {
			return err
		}
	}

	if cfg.SeedsDir == "" {
		return fuzzerr.New(fuzzerr.KindNoSeeds, "--seeds is required")
	}
	if cfg.OutDir == "" {
		return fuzzerr.New(fuzzerr.KindOutputDir, "--out is required")
	}
	if cfg.EngineCmd == "" {
		return fuzzerr.New(fuzzerr.KindSpawn, "--engine-cmd is required")
	}
	if !isValidMinimizeBy(cfg.MinimizeBy) {
		return fuzzerr.New(fuzzerr.KindBadConfig, minimizeBySuggestion(cfg.MinimizeBy))
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	d, err := driver.New(*cfg, rng, os.Stderr)
	if err != nil {
		return err
	}

	if _, err := d.Run(); err != nil {
		return err
	}
	return d.WriteSummary()
}

// spaceDelimitedFlag is a pflag.Value splitting its argument on whitespace,
// for engine/scorer argument lists, instead of pflag's built-in StringSlice
// (which is CSV-delimited).
type spaceDelimitedFlag struct {
	target *[]string
}

func newSpaceDelimitedFlag(target *[]string) *spaceDelimitedFlag {
	return &spaceDelimitedFlag{target: target}
}

func (f *spaceDelimitedFlag) String() string {
	return strings.Join(*f.target, " ")
}

func (f *spaceDelimitedFlag) Set(raw string) error {
	*f.target = strings.Fields(raw)
	return nil
}

func (f *spaceDelimitedFlag) Type() string {
	return "space-delimited string"
}

func isValidMinimizeBy(v string) bool {
	for _, candidate := range minimizeByValues {
		if v == candidate {
			return true
		}
	}
	return false
}

// minimizeBySuggestion builds a "did you mean" hint using fuzzy string
// matching against the closed set of accepted --minimize-by values, instead
// of a bare "invalid value" error.
func minimizeBySuggestion(got string) string {
	matches := fuzzy.RankFindFold(got, minimizeByValues)
	if len(matches) == 0 {
		return fmt.Sprintf("invalid --minimize-by %q, expected one of %v", got, minimizeByValues)
	}
	sort.Sort(matches)
	return fmt.Sprintf("invalid --minimize-by %q, did you mean %q?", got, matches[0].Target)
}

// reportAndClassify prints err to stderr and maps it to a process exit code.
func reportAndClassify(err error) int {
	fmt.Fprintf(os.Stderr, "jsfuzz: %v\n", err)

	var fe *fuzzerr.Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case fuzzerr.KindNoSeeds, fuzzerr.KindBadConfig, fuzzerr.KindBadRegex:
			return exitBadArgs
		case fuzzerr.KindOutputDir, fuzzerr.KindSpawn:
			return exitStartup
		default:
			return exitRunFailure
		}
	}
	return exitRunFailure
}
