package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated controller statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Scene at window end
	Bodies int `csv:"bodies"`

	// Player ground state during window
	GroundedFrac float64 `csv:"grounded_frac"`
	Jumps        int     `csv:"jumps"`    // jump intents produced
	Takeoffs     int     `csv:"takeoffs"` // grounded to airborne transitions
	Landings     int     `csv:"landings"` // airborne to grounded transitions

	// Player horizontal speed distribution
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Player height and travel
	HeightMax float64 `csv:"height_max"`
	Distance  float64 `csv:"distance"` // horizontal path length

	// Solver and cleanup
	ContactsMean float64 `csv:"contacts_mean"`
	Removed      int     `csv:"removed"`
	Respawns     int     `csv:"respawns"`
}

// Percentile returns the smallest value in sorted that is at least the
// fraction p of samples. p is clamped to [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(min(1, max(0, p)), stat.Empirical, sorted, nil)
}

// ComputeSpeedStats calculates mean, sample standard deviation, median, p90
// and maximum of speed values.
func ComputeSpeedStats(values []float64) (mean, std, p50, p90, max float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	max = floats.Max(sorted)

	return mean, std, p50, p90, max
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("bodies", s.Bodies),
		slog.Float64("grounded_frac", s.GroundedFrac),
		slog.Int("jumps", s.Jumps),
		slog.Int("takeoffs", s.Takeoffs),
		slog.Int("landings", s.Landings),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("height_max", s.HeightMax),
		slog.Float64("distance", s.Distance),
		slog.Float64("contacts_mean", s.ContactsMean),
		slog.Int("removed", s.Removed),
		slog.Int("respawns", s.Respawns),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"bodies", s.Bodies,
		"grounded_frac", s.GroundedFrac,
		"jumps", s.Jumps,
		"takeoffs", s.Takeoffs,
		"landings", s.Landings,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"speed_max", s.SpeedMax,
		"height_max", s.HeightMax,
		"distance", s.Distance,
		"removed", s.Removed,
		"respawns", s.Respawns,
	)
}
