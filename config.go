package koala

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config identifies the engine to talk to. Both fields are required.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Validate reports a configuration error when Host or Port is missing.
func (cfg Config) Validate() error {
	if cfg.Host == "" {
		return newConfigurationError("host is required", ErrMissingHost)
	}
	if cfg.Port == 0 {
		return newConfigurationError("port is required", ErrMissingPort)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return newConfigurationError(fmt.Sprintf("port %d out of range", cfg.Port), ErrInvalidPort)
	}
	return nil
}

// Address returns host:port.
func (cfg Config) Address() string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

// FileConfig is the on-disk form read by LoadConfig.
type FileConfig struct {
	Config
	Timeout time.Duration
}

// LoadConfig reads a YAML document such as
//
//	host: 127.0.0.1
//	port: 9981
//	timeout: 3s
//
// The returned configuration is not validated; New does that.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML configuration document.
func ParseConfig(data []byte) (*FileConfig, error) {
	var raw struct {
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		Timeout string `yaml:"timeout"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	fc := &FileConfig{Config: Config{Host: raw.Host, Port: raw.Port}}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse config timeout %q: %w", raw.Timeout, err)
		}
		fc.Timeout = d
	}
	return fc, nil
}
