package sim

import (
	"log/slog"

	"github.com/pthm-cable/hopper/telemetry"
)

// flushTelemetry closes the stats window when it is due.
func (s *Sim) flushTelemetry() (telemetry.WindowStats, bool) {
	if !s.collector.ShouldFlush(s.tick) {
		return telemetry.WindowStats{}, false
	}

	stats := s.collector.Flush(s.tick, s.BodyCount())
	perfStats := s.perf.Stats()
	s.lastStat = stats
	s.totals.Windows++
	s.totals.Distance += stats.Distance

	// Call stats callback if provided
	if s.opts.StatsCallback != nil {
		s.opts.StatsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if s.opts.Output != nil {
		if err := s.opts.Output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.opts.Output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	return stats, true
}
