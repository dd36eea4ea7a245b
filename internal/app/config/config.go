package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int            `yaml:"log_level"` // Logging level (e.g., -4: debug, 0: info, etc.).
	Clients  []ClientConfig `yaml:"clients"`   // List of mailbox account configurations.
}

type ClientConfig struct {
	Host               string `yaml:"host"`                 // IMAP server hostname.
	Port               int    `yaml:"port"`                 // IMAP server port. Defaults to 993, or 143 when insecure.
	Insecure           bool   `yaml:"insecure"`             // Dial without TLS. Off by default.
	Login              string `yaml:"login"`                // Mailbox account username.
	Password           string `yaml:"password"`             // Mailbox account password.
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // Skip TLS certificate verification. Off by default.
}

// WithDefaults returns a copy with the port filled in from the transport choice.
func (c ClientConfig) WithDefaults() ClientConfig {
	if c.Port == 0 {
		if c.Insecure {
			c.Port = 143
		} else {
			c.Port = 993
		}
	}
	return c
}

func LoadConfig(cfgFilepath, envFilepath string) (Config, error) {
	var cfg Config

	if _, err := os.Stat(envFilepath); err == nil {
		if err = godotenv.Load(envFilepath); err != nil {
			return cfg, fmt.Errorf("unable to load environment variables from file: %w", err)
		}
	}

	//nolint:gosec
	fileBytes, err := os.ReadFile(cfgFilepath)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("configuration file at this cfgFilepath doesn't exist: %w", err)
		case errors.Is(err, os.ErrPermission):
			return cfg, fmt.Errorf("permission denied for accessing configuration file: %w", err)
		default:
			return cfg, fmt.Errorf("unexpected error during reading configuration file: %w", err)
		}
	}

	envExpanded := os.ExpandEnv(string(fileBytes))
	if err = yaml.Unmarshal([]byte(envExpanded), &cfg); err != nil {
		return cfg, fmt.Errorf("unable to unmarshal configuration file: %w", err)
	}

	for i := range cfg.Clients {
		cfg.Clients[i] = cfg.Clients[i].WithDefaults()
	}

	return cfg, nil
}
