package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

const saturationWarning = 0.8

// Gauge samples one bounded resource of the sync layer, e.g. the delivery
// queue. Limit is zero when the resource has no bound.
type Gauge struct {
	Name   string
	Sample func() (value, limit int)
}

// MonitorWorker periodically logs the gauges and the memory of the client
// process. Sampling never blocks the sync layer: every gauge reads counters
// behind their own lock.
type MonitorWorker struct {
	log      *slog.Logger
	gauges   []Gauge
	interval time.Duration
	self     *process.Process
}

func NewMonitorWorker(log *slog.Logger, interval time.Duration, gauges ...Gauge) *MonitorWorker {
	w := &MonitorWorker{log: log, gauges: gauges, interval: interval}
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Debug("Process metrics unavailable", "error", err)
	} else {
		w.self = self
	}
	return w
}

func (w *MonitorWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping sync monitoring")
			return nil
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *MonitorWorker) sample() {
	for _, gauge := range w.gauges {
		value, limit := gauge.Sample()
		if limit > 0 && float64(value) >= saturationWarning*float64(limit) {
			w.log.Warn("Gauge close to its limit", "gauge", gauge.Name, "value", value, "limit", limit)
			continue
		}
		w.log.Debug("Gauge", "gauge", gauge.Name, "value", value, "limit", limit)
	}
	if w.self == nil {
		return
	}
	ram, err := w.self.MemoryPercent()
	if err != nil {
		w.log.Debug("Error while finding process ram usage", "error", err)
		return
	}
	w.log.Debug("Process", "pid", w.self.Pid, "ram_percent", ram)
}
