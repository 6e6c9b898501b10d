package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"swarm/config"
	"swarm/network"
	"swarm/records"
	"swarm/room"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.InitConfig(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	store, err := openRecords(cfg)
	if err != nil {
		return fmt.Errorf("records: %w", err)
	}
	if store != nil {
		defer store.Close()
	}
	log.Info("records ready", zap.String("backend", cfg.RecordsBackend))

	rooms := room.NewManager(room.Options{
		Seed:       cfg.MapSeed,
		MapWidth:   cfg.MapWidth,
		MapHeight:  cfg.MapHeight,
		MaxPlayers: cfg.MaxPlayers,
		Game:       cfg.Game,
		Binary:     cfg.SnapshotFormat == "msgpack",
		Store:      store,
		Logger:     log,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           network.NewServer(rooms, store, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.ServerAddr),
			zap.Duration("tick", cfg.TickInterval()),
			zap.String("snapshots", cfg.SnapshotFormat))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			rooms.Shutdown()
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	rooms.Shutdown()
	return nil
}

func openRecords(cfg config.Config) (records.Storage, error) {
	switch cfg.RecordsBackend {
	case "postgres":
		s, err := records.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "json":
		s, err := records.NewJSONStore(cfg.RecordsFile)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	// none
	return nil, nil
}

func newLogger(levelName, format string) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
