// Package main is the sloth model viewer: it opens one glTF model, by name, path or URL,
// in an orbit view.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/sloth/engine"
	"github.com/Carmen-Shannon/sloth/engine/loader"
	"github.com/Carmen-Shannon/sloth/internal/config"
	"github.com/Carmen-Shannon/sloth/internal/logger"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// Parse CLI flags
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		if path := config.ConfigPath(); path != "" {
			fmt.Fprintf(os.Stderr, "Config error in %s: %v\n", path, err)
		} else {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		}
		os.Exit(1)
	}

	if config.SaveRequested() {
		path, err := cfg.Save(config.ConfigPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("config written to", path)
		return
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Source == "" {
		fmt.Fprintln(os.Stderr, "usage: sloth [flags] <model name | path.gltf | url>")
		flag.PrintDefaults()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Sloth ===", zap.String("source", cfg.Source))

	v, err := engine.NewViewer(cfg.Source, engine.WithConfig(cfg), engine.WithContext(ctx))
	if err != nil {
		switch {
		case loader.IsNotFound(err):
			logger.Error("model not found", zap.Error(err))
		case loader.IsUnsupported(err):
			logger.Error("model uses unsupported glTF features", zap.Error(err))
		default:
			logger.Error("startup failed", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
	defer v.Close()

	go func() {
		<-ctx.Done()
		v.Quit()
	}()

	if err := v.Run(); err != nil {
		logger.Error("viewer stopped", zap.Error(err))
		v.Close()
		logger.Sync()
		os.Exit(1)
	}
}
