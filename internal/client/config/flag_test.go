package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "127.0.0.1:9090", "-t", "http", "-d", "10", "-j", "/tmp/j.db", "-l", "debug"},
			expected: &Config{
				ServerEndpointAddr: "127.0.0.1:9090",
				Transport:          "http",
				AutosaveDelay:      10 * time.Second,
				JournalPath:        "/tmp/j.db",
				LogLevel:           "debug",
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"cmd", "-c", "cfg.json", "-x", "1", "-d", "2"},
			expected: &Config{AutosaveDelay: 2 * time.Second},
		},
		{name: "incorrect delay", args: []string{"cmd", "-d", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
