// Command coretermd runs coreterm sessions as a standalone daemon: it
// starts a shell under a PTY, drives it through a coreterm.Engine, and
// exposes the result over HTTP/WebSocket, or attaches the calling
// terminal directly with --local. Structured the way
// noppefoxwolf-vibetunnel's cmd/vibetunnel-server does (cobra root command,
// zap logger, YAML config with a fsnotify watcher).
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/coreterm/coreterm/internal/config"
	"github.com/coreterm/coreterm/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var local bool
	var shell string
	var rows, cols int

	cmd := &cobra.Command{
		Use:   "coretermd",
		Short: "Run a coreterm-backed terminal session",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			watcher, err := config.NewWatcher(configPath, log)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			defer watcher.Close()
			cfg := watcher.Current()

			if shell != "" {
				cfg.Terminal.Shell = shell
			}
			if rows > 0 {
				cfg.Terminal.Rows = rows
			}
			if cols > 0 {
				cfg.Terminal.Cols = cols
			}

			if local {
				caps := detectLocalCapabilities()
				if rows == 0 && caps.Height > 0 {
					cfg.Terminal.Rows = caps.Height
				}
				if cols == 0 && caps.Width > 0 {
					cfg.Terminal.Cols = caps.Width
				}
			}

			manager := session.NewManager(log)
			sess, err := manager.Create(session.CreateOptions{
				Shell:            cfg.Terminal.Shell,
				Rows:             cfg.Terminal.Rows,
				Cols:             cfg.Terminal.Cols,
				ScrollbackBytes:  cfg.Terminal.ScrollbackKB * 1024,
				ScrollbackMapped: cfg.Terminal.ScrollbackMap,
			})
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			if local {
				return runLocal(sess, log)
			}
			return runServer(cfg, manager, log)
		},
	}

	flags := pflag.NewFlagSet("coretermd", pflag.ExitOnError)
	flags.StringVar(&configPath, "config", "coretermd.yaml", "path to YAML config file")
	flags.BoolVar(&local, "local", false, "attach the calling terminal directly instead of serving HTTP")
	flags.StringVar(&shell, "shell", "", "override the configured shell")
	flags.IntVar(&rows, "rows", 0, "override the configured row count")
	flags.IntVar(&cols, "cols", 0, "override the configured column count")
	cmd.Flags().AddFlagSet(flags)

	return cmd
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "t"
	return cfg.Build()
}

func runServer(cfg *config.Config, manager *session.Manager, log *zap.Logger) error {
	router := session.NewServer(manager, log)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("coretermd listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, router)
}
