package main

import (
	"chat-sync/auth"
	"chat-sync/contract"
	"chat-sync/infrastructure/storage"
	"chat-sync/internal"
	"chat-sync/runtime"
	"chat-sync/runtime/workers"
	"chat-sync/services"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the calling shell.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the sync layer and hands the terminal to the console.
// Every defer runs before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	backend, err := config.Backend()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	provider, err := auth.NewAnonymousProvider(log, auth.Settings{
		Secret:        config.AuthSecret,
		TokenDuration: config.AuthTokenDuration,
	})
	if err != nil {
		return exitConfig, err
	}

	// 2. Store
	store, closeStore, err := openStore(backend, config, log)
	if err != nil {
		return exitRuntime, err
	}
	defer closeStore()

	// 3. Supervision & Orchestration
	options := runtime.DefaultEngineOptions()
	options.ReplayLastSnapshot = config.ReplayLastSnapshot
	options.Retry.MaxAttempts = config.WriteMaxAttempts
	options.Retry.Min = config.WriteBackoffMin
	options.Retry.Max = config.WriteBackoffMax

	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	delivery := workers.NewDeliveryWorker(log, config.DeliveryBufferSize)
	orchestrator := runtime.NewOrchestrator(log, supervisor, store, delivery, options).
		WithMonitor(config.MetricInterval)

	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- orchestrator.Start(ctx) }()
	defer func() {
		orchestrator.Stop()
		<-done
		log.Info("Client stopped cleanly")
	}()

	service := services.NewChatService(provider,
		services.NewGroupRegistry(log, orchestrator.Groups()),
		services.NewMessageLog(log, orchestrator.Messages(), nil),
	)

	// 4. Session
	if _, err = service.SignIn(ctx); err != nil {
		return exitRuntime, fmt.Errorf("sign in failed: %w", err)
	}

	console := newConsole(service, os.Stdout)
	defer console.leave()
	if err = console.run(ctx, os.Stdin); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

func openStore(backend internal.Backend, config internal.Config, log *slog.Logger) (contract.RemoteStore, func(), error) {
	switch backend {
	case internal.BackendBadger:
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		store := storage.NewBadgerStore(db, log)
		return store, func() {
			store.Close()
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}, nil
	default:
		store := storage.NewMemoryStore(log)
		return store, store.Close, nil
	}
}
