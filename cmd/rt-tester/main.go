package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"rttester/internal/config"
	"rttester/internal/cyclic/clock"
	"rttester/internal/cyclic/executor"
	"rttester/internal/cyclic/report"
	"rttester/internal/rtsched"
	"rttester/pkg/errors"
	"rttester/pkg/utils/contextkey"
	"rttester/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(filepath.Base(os.Args[0]), os.Args[1:], os.Stdout, os.Stderr))
}

func run(name string, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(name, args, stderr)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return 0
		}
		if !isUsageError(err) {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(stderr, "init logger failed: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.WithValue(context.Background(), contextkey.RunID, uuid.NewString())
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Task.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Task.Duration)
		defer cancel()
	}

	return runWorker(ctx, cfg, stdout, stderr)
}

func runWorker(ctx context.Context, cfg *config.AppConfig, stdout, stderr io.Writer) int {
	spec, err := cfg.ThreadSpec()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return errors.ExitCode(err)
	}

	configurator := rtsched.NewConfigurator()
	logger.Debug(ctx, "scheduling capabilities",
		zap.Stringers("policies", configurator.Capabilities().Policies),
	)
	attr, err := configurator.Configure(ctx, spec)
	if err != nil {
		fmt.Fprintln(stderr, err)
		logger.Debug(ctx, "real-time setup failed", zap.Error(err))
		return errors.ExitCode(err)
	}

	reporter := report.NewConsole(stdout, reportOptions(cfg)...)
	src := clock.System(clock.WithStrictWait(cfg.Clock.Strict))
	execCfg := executor.Config{
		Period:      cfg.Period(),
		PrintPerSec: cfg.PrintPerSec(),
	}

	// The executor, and with it the first deadline, is created on the worker.
	var exec *executor.Executor
	thread, err := configurator.Start(ctx, attr, func(ctx context.Context) error {
		var err error
		exec, err = executor.New(execCfg, src, reporter)
		if err != nil {
			return err
		}
		return exec.Run(ctx)
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		logger.Debug(ctx, "worker start failed", zap.Error(err))
		return errors.ExitCode(err)
	}

	logger.Info(ctx, "worker started",
		zap.Int("tid", thread.TID()),
		zap.Stringer("policy", thread.Policy()),
		zap.Int("priority", thread.Priority()),
		zap.Duration("period", execCfg.Period),
		zap.Int64("print_per_sec", execCfg.PrintPerSec),
		zap.String("duration", durationOrForever(cfg.Task.Duration)),
	)

	select {
	case <-thread.Done():
	case <-ctx.Done():
		logger.Info(ctx, "stop requested, waiting for worker", zap.Error(ctx.Err()))
	}
	err = thread.Wait()
	// Terminate the line the reporter kept rewriting.
	fmt.Fprintln(stdout)
	if exec != nil {
		logStats(ctx, exec.Stats())
	}
	if err != nil {
		if !errors.Is(err, errors.ThreadJoinFailed) {
			err = errors.Wrap(err, errors.ThreadJoinFailed)
		}
		fmt.Fprintln(stderr, err)
		return errors.ExitCode(err)
	}
	return 0
}

func reportOptions(cfg *config.AppConfig) []report.Option {
	if cfg.Report.NoColor {
		return []report.Option{report.WithColor(false)}
	}
	return nil
}

func logStats(ctx context.Context, s executor.Stats) {
	logger.Info(ctx, "run summary",
		zap.Uint64("cycles", s.Cycles),
		zap.Uint64("exceeded", s.Exceeded),
		zap.Uint64("reported", s.Reported),
		zap.Duration("min_delay", s.MinDelay),
		zap.Duration("mean_delay", s.MeanDelay()),
		zap.Duration("max_delay", s.MaxDelay),
		zap.Duration("max_task", s.MaxTask),
	)
}
