package app

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/errm"

	"github.com/doublelei/DiffScope/internal/config"
)

// LoadConfig reads the configuration from a YAML file when a path is given,
// falling back to environment variables only. File values are overridden by
// the environment.
func LoadConfig(path string) (config.Config, error) {
	var cfg config.Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, errm.Wrap(err, "failed to read config file")
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, errm.Wrap(err, "failed to read config from environment")
	}

	return cfg, nil
}
