package driver

import (
	"time"

	"github.com/rs/zerolog"
)

// Config holds the driver configuration.
type Config struct {
	// ReadTimeout bounds how long one invocation waits for a complete
	// response unit
	ReadTimeout time.Duration

	// CommandDelay is an optional pause after each write, for firmware
	// that needs breathing room between TX characters
	CommandDelay time.Duration

	// Trace is called after each exchange terminates (optional)
	Trace TraceCallback

	// Logger receives structured per-exchange logging; defaults to a
	// no-op logger
	Logger zerolog.Logger
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ReadTimeout: 2 * time.Second,
		Logger:      zerolog.Nop(),
	}
}

// Option is a functional option for configuring the Driver.
type Option func(*Config)

// WithTimeout sets the response read timeout.
//
// Example:
//
//	drv := driver.New(port, driver.WithTimeout(5*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}

// WithCommandDelay sets a pause applied after each write.
func WithCommandDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.CommandDelay = delay
		}
	}
}

// WithTrace sets a callback observing each completed exchange.
//
// Example:
//
//	drv := driver.New(port, driver.WithTrace(func(ex driver.Exchange) {
//	    fmt.Printf("%s: %d bytes out, %d in (%s)\n",
//	        ex.Command, ex.BytesSent, ex.BytesReceived, ex.Duration)
//	}))
func WithTrace(cb TraceCallback) Option {
	return func(c *Config) {
		c.Trace = cb
	}
}

// WithLogger sets the structured logger used for per-exchange logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
