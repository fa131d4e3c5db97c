package config

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema is the JSON Schema a `--config-json` file must satisfy,
// mirroring the teacher's pattern of compiling one fixed schema resource
// per validator (core/types/validation.go's compileSchema) rather than
// generating the schema from the Go struct at runtime.
const configSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"null_device_path": {"type": "string"},
		"terminate_grace_period_ms": {"type": "integer", "minimum": 0},
		"background_detect_polls": {"type": "integer", "minimum": 1},
		"poll_interval_ms": {"type": "integer", "minimum": 1},
		"builtin_watch_dir": {"type": "string"}
	}
}`

// jsonForm is the wire shape of the JSON config variant: durations are
// expressed in milliseconds, since JSON Schema has no native duration type.
type jsonForm struct {
	NullDevicePath        string `json:"null_device_path"`
	TerminateGracePeriodMs int   `json:"terminate_grace_period_ms"`
	BackgroundDetectPolls int    `json:"background_detect_polls"`
	PollIntervalMs        int    `json:"poll_interval_ms"`
	BuiltinWatchDir       string `json:"builtin_watch_dir"`
}

// compileConfigSchema compiles configSchema once per call, following the
// teacher's NewCompiler/AddResource/Compile sequence.
func compileConfigSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	const url = "schema://wyshell-config.json"
	if err := compiler.AddResource(url, strings.NewReader(configSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// LoadJSON validates data against configSchema, then decodes it into a
// Config, starting from Default() so any field the JSON omits keeps its
// default value.
func LoadJSON(data []byte) (Config, error) {
	schema, err := compileConfigSchema()
	if err != nil {
		return Config{}, err
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, err
	}
	if err := schema.Validate(raw); err != nil {
		return Config{}, err
	}

	var jf jsonForm
	if err := json.Unmarshal(data, &jf); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if jf.NullDevicePath != "" {
		cfg.NullDevicePath = jf.NullDevicePath
	}
	if jf.TerminateGracePeriodMs > 0 {
		cfg.TerminateGracePeriod = time.Duration(jf.TerminateGracePeriodMs) * time.Millisecond
	}
	if jf.BackgroundDetectPolls > 0 {
		cfg.BackgroundDetectPolls = jf.BackgroundDetectPolls
	}
	if jf.PollIntervalMs > 0 {
		cfg.PollInterval = time.Duration(jf.PollIntervalMs) * time.Millisecond
	}
	if jf.BuiltinWatchDir != "" {
		cfg.BuiltinWatchDir = jf.BuiltinWatchDir
	}
	return cfg, nil
}
