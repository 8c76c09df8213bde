package e2e

import (
	"chat-sync/auth"
	"chat-sync/infrastructure/storage"
	"chat-sync/runtime"
	"chat-sync/runtime/workers"
	"chat-sync/services"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

const authSecret = "e2e_secret_long_enough_for_hs256_signing"

type BaseSyncSuite struct {
	suite.Suite
	Config Config
	log    *slog.Logger
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSyncSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.log = logs.GetLoggerFromLevel(slog.LevelWarn)
}

// Node is one running client process: a database, the sync layer and a service.
type Node struct {
	DB      *badger.DB
	Store   *storage.BadgerStore
	Service *services.ChatService
	stop    func()
}

func (n *Node) Close() {
	n.stop()
}

// OpenNode starts a client on the database found in dir.
func (s *BaseSyncSuite) OpenNode(dir string) *Node {
	db, err := badger.Open(badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	s.Require().NoError(err)

	store := storage.NewBadgerStore(db, s.log)
	orchestrator := runtime.NewOrchestrator(s.log, workers.NewSupervisor(s.log, 100*time.Millisecond),
		store, workers.NewDeliveryWorker(s.log, 64), runtime.DefaultEngineOptions())
	done := make(chan error, 1)
	go func() { done <- orchestrator.Start(context.Background()) }()

	provider, err := auth.NewAnonymousProvider(s.log, auth.Settings{Secret: authSecret, TokenDuration: time.Hour})
	s.Require().NoError(err)
	service := services.NewChatService(provider,
		services.NewGroupRegistry(s.log, orchestrator.Groups()),
		services.NewMessageLog(s.log, orchestrator.Messages(), nil))

	return &Node{
		DB:      db,
		Store:   store,
		Service: service,
		stop: func() {
			orchestrator.Stop()
			<-done
			store.Close()
			s.Require().NoError(db.Close())
		},
	}
}

// Step prints a colorized header and runs fn with a bounded context.
func (s *BaseSyncSuite) Step(name string, fn func(ctx context.Context)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.SnapshotTimeout)
	defer cancel()
	fn(ctx)
}

// Await reads snapshots until one satisfies accept.
func Await[T any](s *BaseSyncSuite, ctx context.Context, sub *runtime.Subscription[T], accept func([]T) bool) []T {
	for {
		snapshot, err := sub.Next(ctx)
		s.Require().NoError(err)
		if items := snapshot.Items(); accept(items) {
			return items
		}
	}
}
