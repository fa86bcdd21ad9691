// Command dbee serves the dbee session/query engine over HTTP.
//
// Run with:
//
//	go run ./cmd/dbee -config dbee.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/dbee/internal/assistant"
	"github.com/koustreak/dbee/internal/config"
	"github.com/koustreak/dbee/internal/filestore"
	"github.com/koustreak/dbee/internal/filestore/local"
	"github.com/koustreak/dbee/internal/filestore/minio"
	"github.com/koustreak/dbee/internal/logger"
	"github.com/koustreak/dbee/internal/server"
	"github.com/koustreak/dbee/internal/session"
	"github.com/koustreak/dbee/internal/settings"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "dbee:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.FileStore())
	if err != nil {
		return err
	}
	defer store.Close()

	sessions := session.NewManager(
		session.WithPoolConfig(cfg.Pool()),
		session.WithLogger(log.With().Str("component", "session").Logger()),
	)
	// The live connection is closed on shutdown.
	defer func() {
		if err := sessions.Disconnect(); err != nil {
			log.ErrorWith("disconnect on shutdown failed", err, nil)
		}
	}()

	aiStore := settings.NewAIStore(store)
	relay := assistant.New(aiStore, assistant.Config{
		Timeout:          cfg.Assistant.Timeout,
		OpenAIEndpoint:   cfg.Assistant.OpenAIEndpoint,
		DeepSeekEndpoint: cfg.Assistant.DeepSeekEndpoint,
	}, log.With().Str("component", "assistant").Logger())

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, server.Deps{
		Session:    sessions,
		Profiles:   settings.NewProfiles(store),
		EditorTabs: settings.NewEditorTabs(store),
		AISettings: aiStore,
		Assistant:  relay,
	}, log.With().Str("component", "http").Logger())

	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}
	log.Info("shut down")
	return nil
}

func openStore(ctx context.Context, cfg *filestore.Config) (filestore.Store, error) {
	var (
		store filestore.Store
		err   error
	)
	switch cfg.Provider {
	case filestore.ProviderMinIO:
		store, err = minio.New(ctx, cfg)
	default:
		store, err = local.New(cfg)
	}
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
