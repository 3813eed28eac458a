// Package config loads the tester configuration from YAML.
package config

import (
	"os"
	"time"

	"rttester/internal/rtsched"
	"rttester/pkg/errors"
	"rttester/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPeriodMs    = 1.0
	DefaultPrintPerSec = 5
	DefaultPolicy      = "fifo"
	DefaultInherit     = "explicit"
)

// TaskConfig holds the periodic task settings.
type TaskConfig struct {
	PeriodMs    float64       `yaml:"periodMs"`
	PrintPerSec *int64        `yaml:"printPerSec"`
	Duration    time.Duration `yaml:"duration"`
}

// ThreadConfig holds the worker thread scheduling settings.
type ThreadConfig struct {
	Policy    string `yaml:"policy"`
	Priority  *int   `yaml:"priority"`
	StackSize int    `yaml:"stackSize"`
	Inherit   string `yaml:"inherit"`
}

// ClockConfig holds clock source settings.
type ClockConfig struct {
	Strict bool `yaml:"strict"`
}

// ReportConfig holds console reporter settings.
type ReportConfig struct {
	NoColor bool `yaml:"noColor"`
}

// AppConfig holds the rt-tester configuration.
type AppConfig struct {
	Task   TaskConfig    `yaml:"task"`
	Thread ThreadConfig  `yaml:"thread"`
	Clock  ClockConfig   `yaml:"clock"`
	Report ReportConfig  `yaml:"report"`
	Logger logger.Config `yaml:"logger"`
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	cfg := &AppConfig{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads path, or returns the defaults when path is empty.
func Load(path string) (*AppConfig, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// Read parses path without filling defaults, so callers can tell which
// fields the file set. An empty path yields an empty configuration.
func Read(path string) (*AppConfig, error) {
	if path == "" {
		return &AppConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ConfigLoadFailed, "read config file failed")
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, errors.ConfigParseFailed, "parse config file failed")
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *AppConfig) {
	if cfg.Task.PeriodMs == 0 {
		cfg.Task.PeriodMs = DefaultPeriodMs
	}
	if cfg.Task.PrintPerSec == nil {
		rate := int64(DefaultPrintPerSec)
		cfg.Task.PrintPerSec = &rate
	}
	if cfg.Thread.Policy == "" {
		cfg.Thread.Policy = DefaultPolicy
	}
	if cfg.Thread.Priority == nil {
		priority := rtsched.DefaultPriority
		if p, err := rtsched.ParsePolicy(cfg.Thread.Policy); err == nil && !p.Realtime() {
			priority = 0
		}
		cfg.Thread.Priority = &priority
	}
	if cfg.Thread.StackSize == 0 {
		cfg.Thread.StackSize = rtsched.MinStackSize
	}
	if cfg.Thread.Inherit == "" {
		cfg.Thread.Inherit = DefaultInherit
	}
}

// Validate rejects values the tester cannot run with.
func (c *AppConfig) Validate() error {
	if c.Period() <= 0 {
		return errors.Newf(errors.InvalidParams, "period must be positive, got %vms", c.Task.PeriodMs)
	}
	if c.PrintPerSec() < 0 {
		return errors.Newf(errors.InvalidParams, "print rate must not be negative, got %d", c.PrintPerSec())
	}
	if c.Task.Duration < 0 {
		return errors.Newf(errors.InvalidParams, "duration must not be negative, got %v", c.Task.Duration)
	}
	if _, err := c.ThreadSpec(); err != nil {
		return err
	}
	return nil
}

// Period converts the fractional millisecond period to a whole number of
// nanoseconds, truncating below one nanosecond.
func (c *AppConfig) Period() time.Duration {
	return time.Duration(c.Task.PeriodMs * float64(time.Millisecond))
}

// PrintPerSec returns the report rate, 0 when rate reporting is off.
func (c *AppConfig) PrintPerSec() int64 {
	if c.Task.PrintPerSec == nil {
		return 0
	}
	return *c.Task.PrintPerSec
}

// ThreadSpec parses the thread section. Range checks are left to the
// configurator so they fail with the step that owns them.
func (c *AppConfig) ThreadSpec() (rtsched.Spec, error) {
	policy, err := rtsched.ParsePolicy(c.Thread.Policy)
	if err != nil {
		return rtsched.Spec{}, errors.Wrap(err, errors.InvalidParams)
	}
	inherit, err := rtsched.ParseInheritMode(c.Thread.Inherit)
	if err != nil {
		return rtsched.Spec{}, errors.Wrap(err, errors.InvalidParams)
	}
	priority := 0
	if c.Thread.Priority != nil {
		priority = *c.Thread.Priority
	}
	return rtsched.Spec{
		Policy:    policy,
		Priority:  priority,
		StackSize: c.Thread.StackSize,
		Inherit:   inherit,
	}, nil
}
