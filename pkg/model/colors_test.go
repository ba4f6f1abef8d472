package model

import (
	"regexp"
	"strings"
	"testing"
)

var rgbPattern = regexp.MustCompile(`^rgb\(\d{1,3},\d{1,3},\d{1,3}\)$`)

func TestGenerateClusterColorsCount(t *testing.T) {
	// Covers both the qualitative palette path (< 12) and the
	// interpolated Paired path.
	for _, n := range []int{1, 2, 5, 11, 12, 16, 25} {
		colors := GenerateClusterColors(n)
		if len(colors) != n {
			t.Errorf("GenerateClusterColors(%d) returned %d colors", n, len(colors))
		}
		for _, c := range colors {
			if !rgbPattern.MatchString(c) {
				t.Errorf("bad color format: %q", c)
			}
		}
	}
}

func TestGenerateClusterColorsNonPositive(t *testing.T) {
	if colors := GenerateClusterColors(0); len(colors) != 0 {
		t.Errorf("expected no colors for 0 clusters, got %v", colors)
	}
}

func TestGenerateClusterColorsDistinctWithinPalette(t *testing.T) {
	colors := GenerateClusterColors(5)
	seen := make(map[string]bool)
	dups := 0
	for _, c := range colors {
		if seen[c] {
			dups++
		}
		seen[c] = true
	}
	// The lightness floor can merge near-identical colors, but a small
	// palette should stay mostly distinct.
	if dups > 1 {
		t.Errorf("too many duplicate colors: %s", strings.Join(colors, " "))
	}
}

func TestHLSRoundTrip(t *testing.T) {
	cases := [][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0.5, 0.25, 0.75}, {0.3, 0.3, 0.3}}
	for _, c := range cases {
		h, l, s := rgbToHLS(c[0], c[1], c[2])
		r, g, b := hlsToRGB(h, l, s)
		if abs(r-c[0]) > 1e-9 || abs(g-c[1]) > 1e-9 || abs(b-c[2]) > 1e-9 {
			t.Errorf("round trip of %v gave (%v, %v, %v)", c, r, g, b)
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
