package server

import (
	"fmt"
	"time"
)

// Config contains the configuration for the anonymization service.
type Config struct {
	Server      ServerConfig `json:"server" yaml:"server"`
	Environment string       `json:"environment" yaml:"environment"`
	Version     string       `json:"version" yaml:"version"`
	StartTime   time.Time    `json:"start_time" yaml:"start_time"`

	API APIConfig `json:"api" yaml:"api"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string        `json:"host" yaml:"host"`
	Port           int           `json:"port" yaml:"port"`
	ReadTimeout    time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout" yaml:"write_timeout"`
	MaxHeaderBytes int           `json:"max_header_bytes" yaml:"max_header_bytes"`
}

// APIConfig contains API settings.
type APIConfig struct {
	MaxRecords     int           `json:"max_records" yaml:"max_records"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// NewDefaultConfig creates a default service configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1MB
		},
		Environment: "development",
		Version:     "0.2.0",
		StartTime:   time.Now(),
		API: APIConfig{
			MaxRecords:     500000,
			RequestTimeout: 60 * time.Second,
		},
	}
}

// Validate validates the service configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.API.MaxRecords <= 0 {
		return fmt.Errorf("max records must be positive")
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// GetAddress returns the server address.
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
