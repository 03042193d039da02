package config

import (
	"github.com/doublelei/DiffScope/internal/analyzer"
	"github.com/doublelei/DiffScope/internal/provider"
	"github.com/doublelei/DiffScope/internal/server"
)

// Config represents the main application configuration
type Config struct {
	Server   server.Config   `yaml:"server"`
	Provider provider.Config `yaml:"provider"`
	Analyzer analyzer.Config `yaml:"analyzer"`
}

// Validate validates the configuration. Component defaults are filled by the
// components themselves on creation.
func (c *Config) Validate() error {
	switch provider.Type(c.Provider.Type) {
	case "", provider.TypeGitHub:
		// token is optional for public GitHub repositories
	case provider.TypeGitLab:
		if c.Provider.Token == "" {
			return ErrMissingProviderToken
		}
	default:
		return ErrInvalidProviderType
	}

	if c.Analyzer.Workers < 0 {
		return ErrInvalidAnalyzerConfig
	}

	return nil
}
