// Package minimizer implements the greedy line-granularity delta debugger
// shared by both the signature-preserving and coverage-preserving reduction
// modes.
package minimizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aledsdavies/jsfuzz/internal/harness"
	"github.com/aledsdavies/jsfuzz/internal/triage"
)

// Oracle decides, from a candidate's outcome, whether the candidate still
// exhibits the property being preserved.
type Oracle func(outcome harness.Outcome) bool

// Minimize runs the greedy ddmin skeleton against program, removing lines
// one at a time for as long as oracle continues to hold on the reduced
// candidate. run executes a candidate program and returns its outcome; it
// may be engine.Run or a coverage-scoring variant.
//
// Minimization is best-effort: on any I/O error from run, the original
// program is returned unchanged.
func Minimize(program string, run func(candidate string) (harness.Outcome, error), oracle Oracle) string {
	lines := strings.Split(program, "\n")

	i := 0
	for i < len(lines) && len(lines) > 1 {
		reduced := removeAt(lines, i)
		outcome, err := run(strings.Join(reduced, "\n"))
		if err != nil {
			return program
		}
		if oracle(outcome) {
			lines = reduced
			continue
		}
		i++
	}
	return strings.Join(lines, "\n")
}

func removeAt(lines []string, idx int) []string {
	out := make([]string, 0, len(lines)-1)
	out = append(out, lines[:idx]...)
	out = append(out, lines[idx+1:]...)
	return out
}

// SignaturePreservingOracle builds an Oracle that holds as long as the
// candidate's stderr signature matches originalSignature.
func SignaturePreservingOracle(originalSignature string) Oracle {
	return func(outcome harness.Outcome) bool {
		return triage.Signature(outcome.Stderr) == originalSignature
	}
}

var underscoreRe = regexp.MustCompile(`_`)

// Score sums parse_int(strip_underscores(group)) over every capture group
// of every match of scoreRegex in stdout concatenated with stderr.
// Unparseable groups contribute zero.
func Score(scoreRegex *regexp.Regexp, stdout, stderr string) int {
	combined := stdout + stderr
	matches := scoreRegex.FindAllStringSubmatch(combined, -1)

	total := 0
	for _, match := range matches {
		for _, group := range match[1:] {
			stripped := underscoreRe.ReplaceAllString(group, "")
			n, err := strconv.Atoi(stripped)
			if err != nil {
				continue
			}
			total += n
		}
	}
	return total
}

// CoveragePreservingOracle builds an Oracle that holds as long as the
// candidate's score (per scoreRegex) is at least targetScore.
func CoveragePreservingOracle(scoreRegex *regexp.Regexp, targetScore int) Oracle {
	return func(outcome harness.Outcome) bool {
		return Score(scoreRegex, outcome.Stdout, outcome.Stderr) >= targetScore
	}
}
