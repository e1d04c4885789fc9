package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mediadex/internal/app"
	"mediadex/internal/applock"
	"mediadex/internal/config"
)

type cliApp struct {
	service *app.Service
	quiet   bool
	timeout time.Duration
	release func()
}

func main() {
	root := &cobra.Command{
		Use:          "mediadex",
		Short:        "Index local media descriptors and drive an external player",
		SilenceUsage: true,
	}

	var (
		configPath  string
		playlistDir string
		playerBin   string
		logLevel    string
		quiet       bool
		timeout     time.Duration
	)

	defaultConfig, err := config.DefaultConfigPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(app.ExitRuntime)
	}

	root.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "config file path")
	root.PersistentFlags().StringVar(&playlistDir, "playlist-dir", "", "playlist folder override")
	root.PersistentFlags().StringVar(&playerBin, "player", "", "player binary override")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	root.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 5*time.Second, "control command timeout")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if playlistDir != "" {
			cfg.Paths.PlaylistDir = playlistDir
		}
		if playerBin != "" {
			cfg.Player.Binary = playerBin
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		logger := newLogger(cfg.Log.Level)

		release, err := applock.Acquire(cfg.Paths.PlaylistDir)
		if err != nil {
			return app.WrapError(app.ExitLocked, "playlist folder busy", err)
		}

		service, err := app.New(logger, cfg)
		if err != nil {
			release()
			return err
		}

		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &cliApp{
			service: service,
			quiet:   quiet,
			timeout: timeout,
			release: release,
		}))
		return nil
	}

	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a := fromContext(cmd); a != nil && a.release != nil {
			a.release()
		}
	}

	root.AddCommand(scanCommand())
	root.AddCommand(refreshCommand())
	root.AddCommand(lsCommand())
	root.AddCommand(playCommand())
	root.AddCommand(randomCommand())
	root.AddCommand(historyCommand())
	root.AddCommand(thumbCommand())
	root.AddCommand(settingsCommand())
	root.AddCommand(pauseCommand())
	root.AddCommand(nextCommand())
	root.AddCommand(prevCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(app.ExitCode(err))
	}
}

type appKey struct{}

func fromContext(cmd *cobra.Command) *cliApp {
	val := cmd.Context().Value(appKey{})
	if val == nil {
		return nil
	}
	return val.(*cliApp)
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
