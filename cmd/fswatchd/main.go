package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/shuakami/fswatch"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error("fswatchd failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "fswatchd",
		Short:         "Watch project directories and report changes that are not excluded",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := fswatch.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			level, err := log.ParseLevel(cfg.LogLevel)
			if err != nil {
				return errors.Wrapf(fswatch.ErrInvalidConfig, "log level %q", cfg.LogLevel)
			}
			log.SetLevel(level)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

func run(ctx context.Context, cfg fswatch.Config) error {
	static, err := fswatch.GlobMatchers(cfg.Watcher.IgnorePatterns)
	if err != nil {
		return err
	}
	registry := fswatch.NewRegistry(static...)

	w, err := fswatch.NewWatcher(cfg.Watcher, registry)
	if err != nil {
		return err
	}
	defer w.Stop()

	tracker := fswatch.NewExcludesFileTracker(registry, w,
		fswatch.NewDirProjectLister(nil, cfg.ProjectsRoot),
		fswatch.WithTrackerConfig(cfg.Tracker))
	if err := tracker.Start(); err != nil {
		return err
	}
	defer tracker.Stop()

	report := func(kind fswatch.EventKind) func(string) {
		return func(path string) {
			log.Info("change", "event", kind, "path", path)
		}
	}
	id := w.RegisterByMatcher(fswatch.MatchFunc(func(string) bool { return true }),
		report(fswatch.EventCreate), report(fswatch.EventModify), report(fswatch.EventDelete))
	defer w.UnregisterByMatcher(id)

	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}
