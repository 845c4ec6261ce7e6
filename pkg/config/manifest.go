package config

import (
	"os"

	gotoml "github.com/pelletier/go-toml/v2"

	pylonerr "github.com/arthur-debert/pylon/pkg/errors"
	"github.com/arthur-debert/pylon/pkg/rules"
)

// PipelineSpec is one [[pipeline]] table in the rule manifest
type PipelineSpec struct {
	// Name is an optional label for logs and errors
	Name string `toml:"name"`

	// BaseDir is the working-directory spec: "/..." for absolute from
	// the project root, "." / "./sub" / "sub" for relative to the
	// referencing document. Defaults to ".".
	BaseDir string `toml:"base_dir"`

	// Glob is the target glob the rule produces
	Glob string `toml:"glob"`

	// Ops is the ordered operation list: OP_COPY or shell commands
	Ops []string `toml:"ops"`

	// Autorun optionally overrides the watch trigger glob
	Autorun string `toml:"autorun"`
}

type pipelinesFile struct {
	Pipelines []PipelineSpec `toml:"pipeline"`
}

// LoadPipelines reads and validates a pipelines.toml rule manifest
func LoadPipelines(path string) ([]PipelineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pylonerr.Wrapf(err, pylonerr.ErrConfigLoad,
			"failed to read pipeline manifest %q", path)
	}

	var manifest pipelinesFile
	if err := gotoml.Unmarshal(data, &manifest); err != nil {
		return nil, pylonerr.Wrapf(err, pylonerr.ErrConfigParse,
			"failed to parse pipeline manifest %q", path)
	}

	for i := range manifest.Pipelines {
		spec := &manifest.Pipelines[i]
		if spec.Glob == "" {
			return nil, pylonerr.Newf(pylonerr.ErrConfigValid,
				"pipeline %d in %q has no glob", i+1, path)
		}
		if len(spec.Ops) == 0 {
			return nil, pylonerr.Newf(pylonerr.ErrConfigValid,
				"pipeline %d (%s) in %q has no operations", i+1, spec.Glob, path)
		}
		if spec.BaseDir == "" {
			spec.BaseDir = "."
		}
	}

	return manifest.Pipelines, nil
}

// BuildRegistry registers every spec and freezes the registry, ready
// for the build's resolution phase
func BuildRegistry(specs []PipelineSpec) (*rules.Registry, error) {
	registry := rules.NewRegistry()

	for _, spec := range specs {
		ops, err := rules.ParseOperations(spec.Ops)
		if err != nil {
			return nil, pylonerr.Wrapf(err, pylonerr.ErrConfigValid,
				"pipeline %q has an invalid operation", displayName(spec))
		}

		rule, err := rules.NewRule(spec.Name, spec.BaseDir, spec.Glob, ops, spec.Autorun)
		if err != nil {
			return nil, pylonerr.Wrapf(err, pylonerr.ErrConfigValid,
				"pipeline %q is invalid", displayName(spec))
		}

		if _, err := registry.Register(rule); err != nil {
			return nil, err
		}
	}

	registry.Freeze()
	return registry, nil
}

func displayName(spec PipelineSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return spec.Glob
}
