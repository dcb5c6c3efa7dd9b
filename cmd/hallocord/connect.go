package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/hallocord"
	"github.com/vango-dev/hallocord/internal/config"
	"github.com/vango-dev/hallocord/pkg/gateway"
)

type connectFlags struct {
	configPath  string
	token       string
	gatewayURL  string
	intents     []string
	compress    bool
	metricsAddr string
	logLevel    string
	logFormat   string
	quiet       bool
}

func connectCmd() *cobra.Command {
	var f connectFlags

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to the gateway and print dispatch events",
		Long: `Connect to the gateway, identify and stay connected until the
server closes the connection or the process is interrupted.

Exit status is 3 if the token is rejected, 2 for other closes that
cannot be fixed by reconnecting, and 1 for any other failure.

Examples:
  HALLOCORD_TOKEN=... hallocord connect
  hallocord connect --intents GUILDS,GUILD_MESSAGES --compress
  hallocord connect --metrics-addr :9464 --log-format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runConnect(cmd.Context(), cfg, f.quiet, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to hallocord.json (default: search from the working directory)")
	cmd.Flags().StringVarP(&f.token, "token", "t", "", "Bot token (default $"+config.EnvToken+")")
	cmd.Flags().StringVar(&f.gatewayURL, "gateway", "", "Gateway base URL")
	cmd.Flags().StringSliceVarP(&f.intents, "intents", "i", nil, "Intent names, comma separated")
	cmd.Flags().BoolVar(&f.compress, "compress", false, "Request zlib-compressed payloads")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve /metrics, /healthz and /debug/latency on this address")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format: text, json")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Do not print dispatch events")

	return cmd
}

// loadConfig merges the file, the environment and the flags, in that order.
func loadConfig(cmd *cobra.Command, f connectFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.Getenv)

	flags := cmd.Flags()
	if f.token != "" {
		cfg.Token = f.token
	}
	if f.gatewayURL != "" {
		cfg.Gateway.URL = f.gatewayURL
	}
	if flags.Changed("intents") {
		cfg.Intents = f.intents
	}
	if flags.Changed("compress") {
		cfg.Compress = f.compress
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = f.metricsAddr
	}
	if f.logLevel != "" {
		cfg.Log.Level = strings.ToLower(f.logLevel)
	}
	if f.logFormat != "" {
		cfg.Log.Format = strings.ToLower(f.logFormat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func runConnect(ctx context.Context, cfg *config.Config, quiet bool, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cfg.Log, stderr)

	mask, err := cfg.IntentMask()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := gateway.NewMetrics(
		gateway.WithRegistry(registry),
		gateway.WithNamespace(cfg.Metrics.Namespace),
	)

	client := hallocord.New(
		hallocord.WithIntents(mask),
		hallocord.WithProperties(cfg.GatewayProperties()),
		hallocord.WithCompression(cfg.Compression()),
		hallocord.WithGateway(cfg.Gateway.URL, cfg.Gateway.Version),
		hallocord.WithLogger(logger),
		hallocord.WithMetrics(metrics),
	)
	defer client.Close()

	if !quiet {
		client.OnDispatch(func(e gateway.Event) {
			fmt.Fprintf(stdout, "#%d %s %s\n", e.Sequence, e.Name, e.Data)
		})
	}

	if cfg.Metrics.Enabled {
		obs := startObserver(cfg.Metrics.Address, newRouter(client, registry), logger)
		defer obs.shutdown()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Login(cfg.Token); err != nil {
		return err
	}
	info("Connecting to %s as %s", cfg.Gateway.URL, mask)

	err = client.Wait(ctx)
	if ctx.Err() != nil {
		logger.Info("interrupted, closing connection")
		return nil
	}
	return err
}
