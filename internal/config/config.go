// Package config defines the CLI flag surface and the optional
// schema-validated JSON config file that can supply the same settings.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aledsdavies/jsfuzz/internal/fuzzerr"
)

// Config is the full set of settings governing one fuzzing run, populated
// from CLI flags and optionally overridden by a JSON config file.
type Config struct {
	EngineCmd          string
	EngineArgs         []string
	SeedsDir           string
	OutDir             string
	Iterations         uint64
	Timeout            time.Duration
	ScoreCmdArgs       []string
	ScoreRegex         string
	KeepOnlyIncreasing bool
	MinimizeBy         string
}

// schemaSource is the embedded JSON Schema validating the optional
// --config document. Every field is optional there: flags that are left
// unset simply keep their CLI default.
const schemaSource = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "engine_cmd": {"type": "string"},
    "engine_args": {"type": "array", "items": {"type": "string"}},
    "seeds": {"type": "string"},
    "out": {"type": "string"},
    "iters": {"type": "integer", "minimum": 1},
    "timeout": {"type": "string"},
    "score_cmd_args": {"type": "array", "items": {"type": "string"}},
    "score_regex": {"type": "string"},
    "keep_only_increasing": {"type": "boolean"},
    "minimize_by": {"type": "string", "enum": ["signature", "coverage"]}
  }
}`

// FileOverrides is the subset of Config fields a JSON config file may
// supply; absent fields are nil/zero and left untouched by Apply.
type FileOverrides struct {
	EngineCmd          *string  `json:"engine_cmd,omitempty"`
	EngineArgs         []string `json:"engine_args,omitempty"`
	SeedsDir           *string  `json:"seeds,omitempty"`
	OutDir             *string  `json:"out,omitempty"`
	Iterations         *uint64  `json:"iters,omitempty"`
	Timeout            *string  `json:"timeout,omitempty"`
	ScoreCmdArgs       []string `json:"score_cmd_args,omitempty"`
	ScoreRegex         *string  `json:"score_regex,omitempty"`
	KeepOnlyIncreasing *bool    `json:"keep_only_increasing,omitempty"`
	MinimizeBy         *string  `json:"minimize_by,omitempty"`
}

// LoadFile reads and schema-validates the JSON config file at path,
// returning its overrides. An invalid document is a startup-fatal error.
func LoadFile(path string) (*FileOverrides, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fuzzerr.Wrap(fuzzerr.KindBadConfig, err, "reading config file")
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", bytes.NewReader([]byte(schemaSource))); err != nil {
		return nil, errors.Wrap(err, "compiling embedded config schema")
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		return nil, errors.Wrap(err, "compiling embedded config schema")
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fuzzerr.Wrap(fuzzerr.KindBadConfig, err, "parsing config file as JSON")
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fuzzerr.Wrap(fuzzerr.KindBadConfig, err, "config file failed schema validation")
	}

	var overrides FileOverrides
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, fuzzerr.Wrap(fuzzerr.KindBadConfig, err, "decoding config file")
	}
	return &overrides, nil
}

// Apply copies every non-nil override into cfg, skipping any field whose
// corresponding flag the user explicitly set on the command line (flags
// win over the config file). changed reports whether a cobra flag name was
// explicitly set.
func (o *FileOverrides) Apply(cfg *Config, changed func(name string) bool) error {
	if o.EngineCmd != nil && !changed("engine-cmd") {
		cfg.EngineCmd = *o.EngineCmd
	}
	if o.EngineArgs != nil && !changed("engine-args") {
		cfg.EngineArgs = o.EngineArgs
	}
	if o.SeedsDir != nil && !changed("seeds") {
		cfg.SeedsDir = *o.SeedsDir
	}
	if o.OutDir != nil && !changed("out") {
		cfg.OutDir = *o.OutDir
	}
	if o.Iterations != nil && !changed("iters") {
		cfg.Iterations = *o.Iterations
	}
	if o.Timeout != nil && !changed("timeout") {
		d, err := time.ParseDuration(*o.Timeout)
		if err != nil {
			return fuzzerr.Wrap(fuzzerr.KindBadConfig, err, "parsing config timeout")
		}
		cfg.Timeout = d
	}
	if o.ScoreCmdArgs != nil && !changed("score-cmd-args") {
		cfg.ScoreCmdArgs = o.ScoreCmdArgs
	}
	if o.ScoreRegex != nil && !changed("score-regex") {
		cfg.ScoreRegex = *o.ScoreRegex
	}
	if o.KeepOnlyIncreasing != nil && !changed("keep-only-increasing") {
		cfg.KeepOnlyIncreasing = *o.KeepOnlyIncreasing
	}
	if o.MinimizeBy != nil && !changed("minimize-by") {
		cfg.MinimizeBy = *o.MinimizeBy
	}
	return nil
}
