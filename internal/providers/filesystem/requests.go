package filesystem

import (
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Every tool declares a typed request struct decoded from the raw
// argument map before any filesystem access. A shape mismatch (missing
// field, wrong type) maps to invalid_arguments.

type pathRequest struct {
	Path string `mapstructure:"path"`
}

func (r *pathRequest) validate() error {
	if r.Path == "" {
		return invalidArguments("path is required")
	}
	return nil
}

type readBatchRequest struct {
	Paths []string `mapstructure:"paths"`
}

func (r *readBatchRequest) validate() error {
	if len(r.Paths) == 0 {
		return invalidArguments("paths is required and must not be empty")
	}
	return nil
}

type writeRequest struct {
	Path    string  `mapstructure:"path"`
	Content *string `mapstructure:"content"`
}

func (r *writeRequest) validate() error {
	if r.Path == "" {
		return invalidArguments("path is required")
	}
	if r.Content == nil {
		return invalidArguments("content is required")
	}
	return nil
}

type editRequest struct {
	Path   string `mapstructure:"path"`
	Edits  []Edit `mapstructure:"edits"`
	DryRun bool   `mapstructure:"dry_run"`
}

func (r *editRequest) validate() error {
	if r.Path == "" {
		return invalidArguments("path is required")
	}
	if len(r.Edits) == 0 {
		return invalidArguments("edits is required and must not be empty")
	}
	return nil
}

type treeRequest struct {
	Path     string `mapstructure:"path"`
	MaxDepth int    `mapstructure:"max_depth"`
}

func (r *treeRequest) validate() error {
	if r.Path == "" {
		return invalidArguments("path is required")
	}
	if r.MaxDepth < 0 {
		return invalidArguments("max_depth must not be negative")
	}
	return nil
}

type moveRequest struct {
	Source      string `mapstructure:"source"`
	Destination string `mapstructure:"destination"`
}

func (r *moveRequest) validate() error {
	if r.Source == "" {
		return invalidArguments("source is required")
	}
	if r.Destination == "" {
		return invalidArguments("destination is required")
	}
	return nil
}

type searchRequest struct {
	Path            string   `mapstructure:"path"`
	Pattern         string   `mapstructure:"pattern"`
	ExcludePatterns []string `mapstructure:"exclude_patterns"`
	MaxResults      int      `mapstructure:"max_results"`
}

func (r *searchRequest) validate() error {
	if r.Path == "" {
		return invalidArguments("path is required")
	}
	if r.Pattern == "" {
		return invalidArguments("pattern is required")
	}
	if r.MaxResults < 0 {
		return invalidArguments("max_results must not be negative")
	}
	return nil
}

type searchContentRequest struct {
	Path       string   `mapstructure:"path"`
	Query      string   `mapstructure:"query"`
	Extensions []string `mapstructure:"extensions"`
	MaxResults int      `mapstructure:"max_results"`
}

func (r *searchContentRequest) validate() error {
	if r.Path == "" {
		return invalidArguments("path is required")
	}
	if r.Query == "" {
		return invalidArguments("query is required")
	}
	if r.MaxResults < 0 {
		return invalidArguments("max_results must not be negative")
	}
	return nil
}

// decodeParams decodes a raw argument map into a typed request struct.
// Types are matched strictly except that whole JSON numbers (float64 on
// the wire) decode into int fields.
func decodeParams(params map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		DecodeHook: wholeNumberHook,
	})
	if err != nil {
		return invalidArguments("internal decoder error: %v", err)
	}
	if err := decoder.Decode(params); err != nil {
		return invalidArguments("invalid arguments: %v", err)
	}
	return nil
}

// wholeNumberHook converts whole float64 values into integer fields.
// JSON has no integer type, so every number arrives as float64.
func wholeNumberHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() == reflect.Float64 && to.Kind() == reflect.Int {
		f := data.(float64)
		if f == math.Trunc(f) {
			return int(f), nil
		}
	}
	return data, nil
}
