package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (TEACHMOVER_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", os.Getenv("TEACHMOVER_PORT"), &cfg.Port)

	if err := s.setIntFromString("baud", os.Getenv("TEACHMOVER_BAUD_RATE"), &cfg.BaudRate); err != nil {
		return err
	}

	if err := s.setDuration("timeout", os.Getenv("TEACHMOVER_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("command-delay", os.Getenv("TEACHMOVER_COMMAND_DELAY"), &cfg.CommandDelay); err != nil {
		return err
	}

	s.setBoolFromString("verbose", os.Getenv("TEACHMOVER_VERBOSE"), &cfg.Verbose)

	return nil
}
