// Command scorewrap is a minimal reference implementation of the
// coverage-scorer protocol: it runs a target engine on a JS file and
// prints a single "edges:<N>" line derived either from an edges file the
// engine wrote, or by summing the numeric capture groups of a regex
// applied to the engine's own output.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		engine     string
		engineArgs []string
		edgesFile  string
		scoreRegex string
	)

	cmd := &cobra.Command{
		Use:           "scorewrap <js-file>",
		Short:         "Run an engine and report a numeric coverage score",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cc *cobra.Command, args []string) error {
			return scoreAndPrint(engine, engineArgs, edgesFile, scoreRegex, args[0])
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "engine command to run")
	cmd.Flags().Var(newSpaceDelimitedFlag(&engineArgs), "engine-args", "space-delimited additional args for the engine")
	cmd.Flags().StringVar(&edgesFile, "edges-file", "", "optional file the engine writes edge counts to")
	cmd.Flags().StringVar(&scoreRegex, "score-regex", "", "regex with numeric capture groups summed into a score")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scorewrap: %v\n", err)
		return 1
	}
	return 0
}

// spaceDelimitedFlag is a pflag.Value splitting its argument on whitespace,
// for a space-delimited engine argument list instead of pflag's built-in
// CSV-delimited StringSlice.
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

func scoreAndPrint(engine string, engineArgs []string, edgesFile, scoreRegex, jsPath string) error {
	argv := append(append([]string{}, engineArgs...), jsPath)
	cmd := exec.Command(engine, argv...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	_ = cmd.Run() // the engine's own exit status is not this wrapper's concern

	score, ok := scoreFromEdgesFile(edgesFile)
	if !ok && scoreRegex != "" {
		re, err := regexp.Compile(scoreRegex)
		if err != nil {
			return fmt.Errorf("compiling score regex: %w", err)
		}
		score = scoreFromRegex(re, stdout.String()+stderr.String())
		ok = true
	}
	if !ok {
		fmt.Println("edges:0")
		return nil
	}
	fmt.Printf("edges:%d\n", score)
	return nil
}

// scoreFromEdgesFile reads an edges file written by the engine, accepting
// either a bare integer or an "edges:<N>" line.
func scoreFromEdgesFile(path string) (int, bool) {
	if path == "" {
		return 0, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	text := strings.TrimSpace(string(raw))
	text = strings.TrimPrefix(text, "edges:")
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

func scoreFromRegex(re *regexp.Regexp, combined string) int {
	total := 0
	for _, match := range re.FindAllStringSubmatch(combined, -1) {
		for _, group := range match[1:] {
			stripped := strings.ReplaceAll(group, "_", "")
			if n, err := strconv.Atoi(stripped); err == nil {
				total += n
			}
		}
	}
	return total
}
