// Package config loads objalign settings from a YAML file and the
// environment. Environment variables use the OBJALIGN_ prefix and win over
// the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/linkage-design/objectaligner/pkg/align"
	"github.com/linkage-design/objectaligner/pkg/engine"
	"github.com/linkage-design/objectaligner/pkg/logging"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "OBJALIGN_"

// DefaultFile is the config file looked up in the working directory when
// no path is given.
const DefaultFile = "objalign.yaml"

// Config holds every setting.
type Config struct {
	// Align holds the operator defaults, e.g. OBJALIGN_MODE_X=max.
	Align align.Request `yaml:"align"`
	// Log is read from OBJALIGN_LOG_LEVEL, OBJALIGN_LOG_FORMAT and
	// OBJALIGN_LOG_NO_COLOR.
	Log    logging.Config `yaml:"log" envPrefix:"LOG_"`
	Kernel KernelConfig   `yaml:"kernel"`
}

// KernelConfig tunes geometry evaluation.
type KernelConfig struct {
	MeshCells   int           `yaml:"mesh_cells" env:"MESH_CELLS"`
	EvalTimeout time.Duration `yaml:"eval_timeout" env:"EVAL_TIMEOUT"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Align: align.DefaultRequest(),
		Log:   logging.DefaultConfig(),
		Kernel: KernelConfig{
			MeshCells:   200,
			EvalTimeout: engine.EvalTimeout,
		},
	}
}

// Load reads the file at path over the defaults and then applies the
// environment. An empty path tries DefaultFile and ignores its absence.
func Load(path string) (Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		path = DefaultFile
	}
	if err := readFile(path, &cfg); err != nil {
		if !(optional && errors.Is(err, fs.ErrNotExist)) {
			return Config{}, err
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ParseEnv overlays OBJALIGN_ environment variables onto target.
func ParseEnv(target *Config) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
