package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientConfigWithDefaults(t *testing.T) {
	tests := []struct {
		name         string
		cfg          ClientConfig
		expectedPort int
	}{
		{
			name:         "secure_default_port",
			cfg:          ClientConfig{Host: "imap.example.com"},
			expectedPort: 993,
		},
		{
			name:         "insecure_default_port",
			cfg:          ClientConfig{Host: "imap.example.com", Insecure: true},
			expectedPort: 143,
		},
		{
			name:         "explicit_port_kept",
			cfg:          ClientConfig{Host: "imap.example.com", Port: 1993},
			expectedPort: 1993,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedPort, tt.cfg.WithDefaults().Port)
		})
	}
}
