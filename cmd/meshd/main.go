package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"meshd/internal/common/fsutil"
	"meshd/internal/config"
	"meshd/internal/httpapi"
	"meshd/internal/proxy"
	"meshd/internal/replicate"
	"meshd/internal/stager"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "meshd:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	// Flag defaults come from the environment so container deployments can
	// skip flags entirely.
	defaultAddr := ":8080"
	if v := os.Getenv("MESHD_ADDR"); v != "" {
		defaultAddr = v
	}
	root := &cobra.Command{
		Use:           "meshd",
		Short:         "Stateless proxy relaying images to an image-to-3D inference provider",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addr := root.Flags().String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	configPath := root.Flags().String("config", "", "Optional config file (.yaml/.json/.toml)")
	allowedOrigin := root.Flags().String("allowed-origin", "", "Exact caller origin to allow (empty: loopback dev fallback)")
	staging := root.Flags().String("staging", "", "Staging destination for inline images: replicate|s3")
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cmd, *addr, *configPath, *allowedOrigin, *staging)
	}
	return root
}

func run(cmd *cobra.Command, addr, configPath, allowedOrigin, staging string) error {
	var cfg config.Config
	if configPath != "" {
		p, err := fsutil.ExpandHome(configPath)
		if err != nil {
			return err
		}
		if !fsutil.PathExists(p) {
			return fmt.Errorf("config file not found: %s", p)
		}
		cfg, err = config.Load(p)
		if err != nil {
			return fmt.Errorf("load config %s: %w", p, err)
		}
	}
	cfg.ApplyEnv()
	// Explicit flags win over file and env.
	if cmd.Flags().Changed("addr") || cfg.Addr == "" {
		cfg.Addr = addr
	}
	if cmd.Flags().Changed("allowed-origin") {
		cfg.AllowedOrigin = allowedOrigin
	}
	if cmd.Flags().Changed("staging") {
		cfg.Staging = staging
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "meshd").Logger()
	httpapi.SetLogger(logger)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	if cfg.Token == "" {
		logger.Warn().Msg("REPLICATE_API_TOKEN is not set; prediction requests will fail until it is")
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	client := replicate.New(cfg.ProviderURL, cfg.Token, nil)
	var uploader stager.Uploader = client
	if cfg.Staging == config.StagingS3 {
		up, err := stager.NewS3Uploader(baseCtx, cfg.S3)
		if err != nil {
			return err
		}
		uploader = up
	}

	svc := proxy.New(cfg, client, uploader)
	mux := httpapi.NewMux(svc, cfg.AllowedOrigin)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("staging", cfg.Staging).Msg("meshd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
