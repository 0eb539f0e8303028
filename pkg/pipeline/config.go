package pipeline

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/planvia/clusterplan/pkg/errors"
)

// configFile is the on-disk shape of a pipeline config. Only option
// fields carry toml tags; runtime fields are never read from disk.
type configFile struct {
	Pipeline Options `toml:"pipeline"`
	Cache    struct {
		Dir     string `toml:"dir"`
		Enabled bool   `toml:"enabled"`
	} `toml:"cache"`
}

// Config is a parsed pipeline config file.
type Config struct {
	Options      Options
	CacheDir     string
	CacheEnabled bool
}

// LoadConfig reads a TOML config file and validates the options it
// carries. Fields missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "failed to read config file")
	}

	var file configFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to parse config file")
	}
	if err := file.Pipeline.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Config{
		Options:      file.Pipeline,
		CacheDir:     file.Cache.Dir,
		CacheEnabled: file.Cache.Enabled,
	}, nil
}
