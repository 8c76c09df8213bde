package runtime

import (
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"chat-sync/runtime/workers"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Orchestrator wires the sync engines to one store and one delivery worker
// and runs that worker under supervision.
type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	delivery   *workers.DeliveryWorker
	groups     *SyncEngine[chat.Group]
	messages   *SyncEngine[chat.Message]
	monitor    time.Duration
	started    bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, store contract.RemoteStore,
	delivery *workers.DeliveryWorker, options EngineOptions) *Orchestrator {
	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		delivery:   delivery,
		groups:     NewSyncEngine[chat.Group](log.With("topic", "groups"), store, delivery, options),
		messages:   NewSyncEngine[chat.Message](log.With("topic", "messages"), store, delivery, options),
	}
}

// Groups is the engine of the group list topic.
func (o *Orchestrator) Groups() *SyncEngine[chat.Group] { return o.groups }

// Messages is the engine of the per-group message topics.
func (o *Orchestrator) Messages() *SyncEngine[chat.Message] { return o.messages }

// WithMonitor samples the delivery backlog and the open listeners every
// interval once started. Zero disables it.
func (o *Orchestrator) WithMonitor(interval time.Duration) *Orchestrator {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.monitor = interval
	return o
}

// Start registers the delivery worker and blocks while the supervisor runs it.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.supervisor.Add(o.delivery)
	if o.monitor > 0 {
		o.supervisor.Add(workers.NewMonitorWorker(o.log, o.monitor,
			workers.Gauge{Name: "delivery_queue", Sample: o.delivery.Backlog},
			workers.Gauge{Name: "group_listeners", Sample: func() (int, int) { return o.groups.Listeners(), 0 }},
			workers.Gauge{Name: "message_listeners", Sample: func() (int, int) { return o.messages.Listeners(), 0 }},
		))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and snapshot delivery")
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels the supervised context. Pending deliveries are dropped and
// later store notifications are no longer delivered.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
	o.delivery.Stop()
}
