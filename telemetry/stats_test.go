package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.0},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.0},
		{"p95 rounds up", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.95, 10.0},
		{"p below range", []float64{1, 2, 3}, -0.5, 1.0},
		{"p above range", []float64{1, 2, 3}, 1.5, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSpeedStats(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	mean, std, p50, p90, max := ComputeSpeedStats(values)

	if math.Abs(mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", mean)
	}

	// Sample standard deviation of 1..10
	if math.Abs(std-3.0277) > 0.001 {
		t.Errorf("std = %v, want ~3.028", std)
	}

	if p50 != 5 {
		t.Errorf("p50 = %v, want 5", p50)
	}

	if p90 != 9 {
		t.Errorf("p90 = %v, want 9", p90)
	}

	if max != 10 {
		t.Errorf("max = %v, want 10", max)
	}
}

func TestComputeSpeedStatsUnsorted(t *testing.T) {
	values := []float64{3, 1, 2}
	_, _, p50, _, max := ComputeSpeedStats(values)
	if p50 != 2 || max != 3 {
		t.Errorf("p50 = %v, max = %v", p50, max)
	}
	if values[0] != 3 {
		t.Error("input slice was modified")
	}
}

func TestComputeSpeedStatsSingle(t *testing.T) {
	mean, std, p50, p90, max := ComputeSpeedStats([]float64{4})
	if mean != 4 || std != 0 || p50 != 4 || p90 != 4 || max != 4 {
		t.Errorf("single value stats: %v %v %v %v %v", mean, std, p50, p90, max)
	}
}

func TestComputeSpeedStatsEmpty(t *testing.T) {
	mean, std, p50, p90, max := ComputeSpeedStats([]float64{})

	if mean != 0 || std != 0 || p50 != 0 || p90 != 0 || max != 0 {
		t.Error("empty slice should return all zeros")
	}
}
