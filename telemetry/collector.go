package telemetry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is the per-tick state of the player recorded by the Collector.
type Sample struct {
	Position r3.Vec
	Velocity r3.Vec
	Grounded bool
	Jumps    int // jump intents this tick
	Contacts int // solver contact pairs this tick
	Removed  int // bodies removed by cleanup this tick
	Respawn  bool
}

// Collector accumulates samples within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Accumulators for current window
	ticks         int
	groundedTicks int
	jumps         int
	takeoffs      int
	landings      int
	speeds        []float64
	heightMax     float64
	distance      float64
	contacts      int
	removed       int
	respawns      int

	// Carried across windows
	hasPrev      bool
	prevGrounded bool
	prevPos      r3.Vec
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		heightMax:           math.Inf(-1),
	}
}

// Record adds one tick of player state.
func (c *Collector) Record(s Sample) {
	c.ticks++
	if s.Grounded {
		c.groundedTicks++
	}
	c.jumps += s.Jumps
	c.contacts += s.Contacts
	c.removed += s.Removed
	if s.Respawn {
		c.respawns++
	}

	c.speeds = append(c.speeds, math.Hypot(s.Velocity.X, s.Velocity.Z))
	c.heightMax = math.Max(c.heightMax, s.Position.Y)

	if c.hasPrev {
		switch {
		case c.prevGrounded && !s.Grounded:
			c.takeoffs++
		case !c.prevGrounded && s.Grounded:
			c.landings++
		}
		if !s.Respawn {
			c.distance += math.Hypot(s.Position.X-c.prevPos.X, s.Position.Z-c.prevPos.Z)
		}
	}
	c.hasPrev = true
	c.prevGrounded = s.Grounded
	c.prevPos = s.Position
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// bodies is the number of simulated bodies at window end.
func (c *Collector) Flush(currentTick int32, bodies int) WindowStats {
	var groundedFrac, contactsMean float64
	if c.ticks > 0 {
		groundedFrac = float64(c.groundedTicks) / float64(c.ticks)
		contactsMean = float64(c.contacts) / float64(c.ticks)
	}
	heightMax := c.heightMax
	if c.ticks == 0 {
		heightMax = 0
	}

	speedMean, speedStd, speedP50, speedP90, speedMax := ComputeSpeedStats(c.speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Bodies: bodies,

		GroundedFrac: groundedFrac,
		Jumps:        c.jumps,
		Takeoffs:     c.takeoffs,
		Landings:     c.landings,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,
		SpeedMax:  speedMax,

		HeightMax: heightMax,
		Distance:  c.distance,

		ContactsMean: contactsMean,
		Removed:      c.removed,
		Respawns:     c.respawns,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.ticks = 0
	c.groundedTicks = 0
	c.jumps = 0
	c.takeoffs = 0
	c.landings = 0
	c.speeds = c.speeds[:0]
	c.heightMax = math.Inf(-1)
	c.distance = 0
	c.contacts = 0
	c.removed = 0
	c.respawns = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
