package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/hopper/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// Methods are nil-safe.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("expected empty dir")
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := int32(1); i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: i * 300, Jumps: int(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{TicksPerSecond: 1000}, 300); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var rows []WindowStats
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (header written once)", len(rows))
	}
	if rows[2].WindowEndTick != 900 || rows[2].Jumps != 3 {
		t.Errorf("last row = %+v", rows[2])
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(perf), "window_end,avg_tick_us") {
		t.Errorf("unexpected perf header: %q", strings.SplitN(string(perf), "\n", 2)[0])
	}
}

func TestOutputManagerWritesConfigAndSummary(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if loaded.Player.Movement.Damping != cfg.Player.Movement.Damping {
		t.Errorf("damping = %f, want %f", loaded.Player.Movement.Damping, cfg.Player.Movement.Damping)
	}

	if err := om.WriteSummary(RunSummary{Ticks: 600, Jumps: 4}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "summary.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "ticks: 600") || !strings.Contains(string(data), "jumps: 4") {
		t.Errorf("unexpected summary:\n%s", data)
	}
}
