package model

import (
	"math"
	"testing"
)

func TestQuantileLinearInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	cases := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, c := range cases {
		if got := Quantile(values, c.q); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Quantile(%v, %v) = %v, want %v", values, c.q, got, c.want)
		}
	}
}

func TestQuantileIgnoresNaN(t *testing.T) {
	values := []float64{1, math.NaN(), 3}
	if got := Quantile(values, 0.5); got != 2 {
		t.Errorf("Quantile with NaN = %v, want 2", got)
	}
}

func TestQuantileEmpty(t *testing.T) {
	if got := Quantile(nil, 0.5); !math.IsNaN(got) {
		t.Errorf("Quantile of empty input = %v, want NaN", got)
	}
	if got := Quantile([]float64{math.NaN()}, 0.5); !math.IsNaN(got) {
		t.Errorf("Quantile of all-NaN input = %v, want NaN", got)
	}
}

func TestClipToPercentile(t *testing.T) {
	if got := ClipToPercentile(math.NaN(), 0, 1); got != "grey" {
		t.Errorf("NaN should clip to grey, got %v", got)
	}
	if got := ClipToPercentile(-0.5, 0, 1); got != 0.0 {
		t.Errorf("below-range value should clamp to start, got %v", got)
	}
	if got := ClipToPercentile(2.5, 0, 1); got != 1.0 {
		t.Errorf("above-range value should clamp to end, got %v", got)
	}
	if got := ClipToPercentile(0.25, 0, 1); got != 0.25 {
		t.Errorf("in-range value should pass through, got %v", got)
	}
}

func TestMedian(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("odd median = %v, want 2", got)
	}
	if got := median([]float64{4, 1, 2, 3}); got != 2.5 {
		t.Errorf("even median = %v, want 2.5", got)
	}
	if got := median([]float64{1, math.NaN(), 3}); got != 2 {
		t.Errorf("median with NaN = %v, want 2", got)
	}
	if got := median(nil); !math.IsNaN(got) {
		t.Errorf("median of empty input = %v, want NaN", got)
	}
}
