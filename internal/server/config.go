package server

import (
	"crypto/tls"
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const (
	defaultAddress     = "0.0.0.0:8080"
	defaultAnalyzePath = "/analyze"
	defaultTimeout     = 60 * time.Second
)

// Config represents analysis server configuration
type Config struct {
	Address     string        `yaml:"address" env:"SERVER_ADDRESS"`
	AnalyzePath string        `yaml:"analyze_path" env:"SERVER_ANALYZE_PATH"`
	Timeout     time.Duration `yaml:"timeout" env:"SERVER_TIMEOUT"`

	EnableHTTPS  bool   `yaml:"enable_https" env:"SERVER_ENABLE_HTTPS"`
	CertFilePath string `yaml:"cert_file_path" env:"SERVER_CERT_FILE_PATH"`
	KeyFilePath  string `yaml:"key_file_path" env:"SERVER_KEY_FILE_PATH"`

	Certificate tls.Certificate `yaml:"-"`
}

func (cfg *Config) PrepareAndValidate() error {
	cfg.Address = lang.Check(cfg.Address, defaultAddress)
	cfg.AnalyzePath = lang.Check(cfg.AnalyzePath, defaultAnalyzePath)
	cfg.Timeout = lang.Check(cfg.Timeout, defaultTimeout)

	if !cfg.EnableHTTPS {
		return nil
	}
	if cfg.CertFilePath == "" || cfg.KeyFilePath == "" {
		return errm.New("cert_file_path and key_file_path are required for HTTPS")
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFilePath, cfg.KeyFilePath)
	if err != nil {
		return errm.Wrap(err, "load key pair")
	}
	cfg.Certificate = cert

	return nil
}
