package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BaudRate != 9600 {
		t.Errorf("BaudRate = %d, want 9600", cfg.BaudRate)
	}
	if cfg.ReadTimeout != 2*time.Second {
		t.Errorf("ReadTimeout = %v, want 2s", cfg.ReadTimeout)
	}
	if cfg.CommandDelay != 0 {
		t.Errorf("CommandDelay = %v, want 0", cfg.CommandDelay)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) { c.Port = "/dev/ttyUSB0" }, ""},
		{"missing port", func(c *Config) {}, "port is required"},
		{"bad baud", func(c *Config) { c.Port = "/dev/ttyUSB0"; c.BaudRate = 0 }, "baud rate"},
		{"bad timeout", func(c *Config) { c.Port = "/dev/ttyUSB0"; c.ReadTimeout = 0 }, "read timeout"},
		{"negative delay", func(c *Config) { c.Port = "/dev/ttyUSB0"; c.CommandDelay = -time.Second }, "command delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
port = "/dev/ttyUSB1"
baud_rate = 19200
read_timeout = "5s"
command_delay = "100ms"
verbose = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.Port != "/dev/ttyUSB1" {
		t.Errorf("Port = %q, want /dev/ttyUSB1", fc.Port)
	}
	if fc.BaudRate != 19200 {
		t.Errorf("BaudRate = %d, want 19200", fc.BaudRate)
	}
	if fc.ReadTimeout != "5s" {
		t.Errorf("ReadTimeout = %q, want 5s", fc.ReadTimeout)
	}
	if fc.Verbose == nil || !*fc.Verbose {
		t.Error("Verbose not parsed as true")
	}
}

func TestApplyFileConfig(t *testing.T) {
	verbose := true
	fc := FileConfig{
		Port:         "/dev/ttyUSB1",
		BaudRate:     19200,
		ReadTimeout:  "5s",
		CommandDelay: "100ms",
		Verbose:      &verbose,
	}

	t.Run("no flags set", func(t *testing.T) {
		cfg := DefaultConfig()
		if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
			t.Fatalf("ApplyFileConfig: %v", err)
		}
		if cfg.Port != "/dev/ttyUSB1" || cfg.BaudRate != 19200 {
			t.Errorf("cfg = %+v, file values not applied", cfg)
		}
		if cfg.ReadTimeout != 5*time.Second {
			t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
		}
		if cfg.CommandDelay != 100*time.Millisecond {
			t.Errorf("CommandDelay = %v, want 100ms", cfg.CommandDelay)
		}
		if !cfg.Verbose {
			t.Error("Verbose not applied")
		}
	})

	t.Run("flags win over file", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Port = "/dev/ttyACM0"
		changed := map[string]bool{"port": true, "baud": true}
		if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
			t.Fatalf("ApplyFileConfig: %v", err)
		}
		if cfg.Port != "/dev/ttyACM0" {
			t.Errorf("Port = %q, flag value should win", cfg.Port)
		}
		if cfg.BaudRate != DefaultBaudRate {
			t.Errorf("BaudRate = %d, flag value should win", cfg.BaudRate)
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		cfg := DefaultConfig()
		bad := FileConfig{ReadTimeout: "not-a-duration"}
		if err := ApplyFileConfig(&cfg, bad, map[string]bool{}); err == nil {
			t.Error("expected parse error, got nil")
		}
	})
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("TEACHMOVER_PORT", "/dev/ttyS3")
	t.Setenv("TEACHMOVER_BAUD_RATE", "4800")
	t.Setenv("TEACHMOVER_READ_TIMEOUT", "750ms")
	t.Setenv("TEACHMOVER_COMMAND_DELAY", "50ms")
	t.Setenv("TEACHMOVER_VERBOSE", "1")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.Port != "/dev/ttyS3" {
		t.Errorf("Port = %q, want /dev/ttyS3", cfg.Port)
	}
	if cfg.BaudRate != 4800 {
		t.Errorf("BaudRate = %d, want 4800", cfg.BaudRate)
	}
	if cfg.ReadTimeout != 750*time.Millisecond {
		t.Errorf("ReadTimeout = %v, want 750ms", cfg.ReadTimeout)
	}
	if cfg.CommandDelay != 50*time.Millisecond {
		t.Errorf("CommandDelay = %v, want 50ms", cfg.CommandDelay)
	}
	if !cfg.Verbose {
		t.Error("Verbose not applied from env")
	}
}

func TestApplyEnvConfigRespectsFlags(t *testing.T) {
	t.Setenv("TEACHMOVER_PORT", "/dev/ttyS3")

	cfg := DefaultConfig()
	cfg.Port = "/dev/ttyACM0"
	if err := ApplyEnvConfig(&cfg, map[string]bool{"port": true}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.Port != "/dev/ttyACM0" {
		t.Errorf("Port = %q, flag value should win over env", cfg.Port)
	}
}

func TestApplyEnvConfigBadValues(t *testing.T) {
	t.Setenv("TEACHMOVER_BAUD_RATE", "fast")
	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Error("expected parse error for bad baud rate, got nil")
	}
}
