// Package config loads the pylon site configuration and the pipeline
// rule manifest.
//
// Site configuration is layered: embedded defaults, then a pylon.toml
// (or pylon.yaml) at the project root, then PYLON_* environment
// variables. Pipeline rules live in a separate manifest file so the
// (out-of-scope) scripting layer and hand-written manifests share one
// format.
package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	pylonerr "github.com/arthur-debert/pylon/pkg/errors"
)

//go:embed pylon.toml
var defaultConfig []byte

// Config is the resolved site configuration
type Config struct {
	// SrcDir holds the markdown sources, relative to the project root
	// unless absolute
	SrcDir string `koanf:"src_dir"`

	// OutputDir is where the rendered site and produced assets land
	OutputDir string `koanf:"output_dir"`

	// ScratchDir overrides where per-request scratch directories are
	// created; empty means the system temp dir
	ScratchDir string `koanf:"scratch_dir"`

	// PipelinesFile is the rule manifest, relative to the project root
	PipelinesFile string `koanf:"pipelines_file"`

	// Workers bounds concurrent asset resolutions
	Workers int `koanf:"workers"`

	// Timeout bounds a single shell operation
	Timeout time.Duration `koanf:"timeout"`
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load builds the layered configuration for a project root
func Load(projectRoot string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, pylonerr.Wrap(err, pylonerr.ErrConfigLoad, "failed to load default configuration")
	}

	// 2. Project config, TOML preferred, YAML accepted
	type candidate struct {
		name   string
		parser koanf.Parser
	}
	candidates := []candidate{
		{"pylon.toml", toml.Parser()},
		{".pylon.toml", toml.Parser()},
		{"pylon.yaml", yaml.Parser()},
		{".pylon.yaml", yaml.Parser()},
	}
	for _, c := range candidates {
		path := filepath.Join(projectRoot, c.name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), c.parser); err != nil {
			return nil, pylonerr.Wrapf(err, pylonerr.ErrConfigParse,
				"failed to parse project config %q", path)
		}
		break
	}

	// 3. Environment overrides: PYLON_OUTPUT_DIR -> output_dir
	if err := k.Load(env.Provider("PYLON_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PYLON_"))
	}), nil); err != nil {
		return nil, pylonerr.Wrap(err, pylonerr.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, pylonerr.Wrap(err, pylonerr.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.SrcDir == "" {
		return pylonerr.New(pylonerr.ErrConfigValid, "src_dir cannot be empty")
	}
	if cfg.OutputDir == "" {
		return pylonerr.New(pylonerr.ErrConfigValid, "output_dir cannot be empty")
	}
	if cfg.Workers <= 0 {
		return pylonerr.Newf(pylonerr.ErrConfigValid, "workers must be positive, got %d", cfg.Workers)
	}
	if cfg.Timeout <= 0 {
		return pylonerr.Newf(pylonerr.ErrConfigValid, "timeout must be positive, got %s", cfg.Timeout)
	}
	return nil
}
