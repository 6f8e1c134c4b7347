package workers

import (
	"chat-core/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// StatsWorker periodically logs the recorder counters together with the
// process's own CPU and memory usage.
type StatsWorker struct {
	log      *slog.Logger
	recorder *observability.Recorder
	interval time.Duration
}

func NewStatsWorker(log *slog.Logger, recorder *observability.Recorder, interval time.Duration) *StatsWorker {
	return &StatsWorker{log: log, recorder: recorder, interval: interval}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			mem, err := p.MemoryInfo()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}

			stats := w.recorder.Snapshot()
			w.log.Info("Runtime stats",
				"cpu_percent", cpu,
				"rss_mb", mem.RSS/1024/1024,
				"messages_accepted", stats.MessagesAccepted,
				"connects", stats.Connects,
				"disconnects", stats.Disconnects,
				"unknown_disconnects", stats.UnknownDisconnects,
			)
		}
	}
}
