package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"time"

	"rttester/internal/config"
)

const usageLine = "Usage: %s [-p ms] [-r Hz] [-config file] [-policy fifo|rr|other] [-priority n] [-inherit explicit|inherited] [-stack bytes] [-d duration] [-strict] [-no-color] [-log-level level]\n"

// parseArgs builds the configuration from the optional config file and
// the command line. Flags override file values only when given.
func parseArgs(name string, args []string, stderr io.Writer) (*config.AppConfig, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, usageLine, name)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "Path to config file")
	periodMs := fs.Float64("p", config.DefaultPeriodMs, "Period in milliseconds (fractional)")
	printPerSec := fs.Int64("r", config.DefaultPrintPerSec, "Console reports per second, 0 disables")
	policy := fs.String("policy", config.DefaultPolicy, "Scheduling policy: fifo, rr or other")
	priority := fs.Int("priority", 0, "Static scheduling priority")
	inherit := fs.String("inherit", config.DefaultInherit, "Scheduling inheritance: explicit or inherited")
	stackSize := fs.Int("stack", 0, "Worker stack reservation in bytes")
	duration := fs.Duration("d", 0, "Stop after this long (e.g. 30s), 0 runs until interrupted")
	strict := fs.Bool("strict", false, "Re-issue the deadline wait after an early wake")
	noColor := fs.Bool("no-color", false, "Disable highlighting of exceeded deadlines")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, usageError{err: err}
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected argument %q\n", fs.Arg(0))
		fs.Usage()
		return nil, usageError{err: fmt.Errorf("unexpected argument %q", fs.Arg(0))}
	}

	cfg, err := config.Read(*configPath)
	if err != nil {
		return nil, err
	}
	// A priority from the file or the command line is kept as given.
	priorityGiven := cfg.Thread.Priority != nil
	config.ApplyDefaults(cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Task.PeriodMs = *periodMs
		case "r":
			rate := *printPerSec
			cfg.Task.PrintPerSec = &rate
		case "policy":
			cfg.Thread.Policy = *policy
		case "priority":
			p := *priority
			cfg.Thread.Priority = &p
			priorityGiven = true
		case "inherit":
			cfg.Thread.Inherit = *inherit
		case "stack":
			cfg.Thread.StackSize = *stackSize
		case "d":
			cfg.Task.Duration = *duration
		case "strict":
			cfg.Clock.Strict = *strict
		case "no-color":
			cfg.Report.NoColor = *noColor
		case "log-level":
			cfg.Logger.Level = *logLevel
		}
	})
	if !priorityGiven && isFlagSet(fs, "policy") {
		// Derive the default priority for the policy picked on the command line.
		cfg.Thread.Priority = nil
		config.ApplyDefaults(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func durationOrForever(d time.Duration) string {
	if d <= 0 {
		return "forever"
	}
	return d.String()
}

// usageError marks command line errors for which usage was already printed.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	var ue usageError
	return stderrors.As(err, &ue)
}
