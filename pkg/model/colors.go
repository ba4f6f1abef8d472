package model

import (
	"fmt"
	"math"
	"math/rand"
)

// Qualitative colorbrewer palettes for cluster traces. Palettes shorter
// than the requested count are skipped; above 12 clusters the Paired scale
// is interpolated instead.
type rgbColor [3]float64

var qualPalettes = [][]rgbColor{
	// Set1
	{{228, 26, 28}, {55, 126, 184}, {77, 175, 74}, {152, 78, 163}, {255, 127, 0}, {255, 255, 51}, {166, 86, 40}, {247, 129, 191}, {153, 153, 153}},
	// Set2
	{{102, 194, 165}, {252, 141, 98}, {141, 160, 203}, {231, 138, 195}, {166, 216, 84}, {255, 217, 47}, {229, 196, 148}, {179, 179, 179}},
	// Set3
	{{141, 211, 199}, {255, 255, 179}, {190, 186, 218}, {251, 128, 114}, {128, 177, 211}, {253, 180, 98}, {179, 222, 105}, {252, 205, 229}, {217, 217, 217}, {188, 128, 189}, {204, 235, 197}, {255, 237, 111}},
	// Dark2
	{{27, 158, 119}, {217, 95, 2}, {117, 112, 179}, {231, 41, 138}, {102, 166, 30}, {230, 171, 2}, {166, 118, 29}, {102, 102, 102}},
	// Pastel1
	{{251, 180, 174}, {179, 205, 227}, {204, 235, 197}, {222, 203, 228}, {254, 217, 166}, {255, 255, 204}, {229, 216, 189}, {253, 218, 236}, {242, 242, 242}},
	// Accent
	{{127, 201, 127}, {190, 174, 212}, {253, 192, 134}, {255, 255, 153}, {56, 108, 176}, {240, 2, 127}, {191, 91, 23}, {102, 102, 102}},
}

var pairedPalette = []rgbColor{
	{166, 206, 227}, {31, 120, 180}, {178, 223, 138}, {51, 160, 44},
	{251, 154, 153}, {227, 26, 28}, {253, 191, 111}, {255, 127, 0},
	{202, 178, 214}, {106, 61, 154}, {255, 255, 153}, {177, 89, 40},
}

// GenerateClusterColors builds a randomized rgb() palette with one entry
// per cluster. Colors that would be too dark against the plot background
// get their HSL lightness raised to 0.6.
func GenerateClusterColors(num int) []string {

	if num < 1 {
		return nil
	}

	var base []rgbColor
	if num < 12 {
		var candidates [][]rgbColor
		for _, p := range qualPalettes {
			if len(p) >= num {
				candidates = append(candidates, p[:num])
			}
		}
		base = candidates[rand.Intn(len(candidates))]
	} else {
		rounded := int(math.Ceil(float64(num)/10)) * 10
		base = interpolatePalette(pairedPalette, rounded)
	}

	sampled := sampleColors(base, num)

	colors := make([]string, 0, num)
	for _, c := range sampled {
		h, l, s := rgbToHLS(c[0]/255, c[1]/255, c[2]/255)
		if l < 0.6 { // Darkens means hard to see against white, lift it
			l = 0.6
		}
		r, g, b := hlsToRGB(h, l, s)
		colors = append(colors, fmt.Sprintf("rgb(%d,%d,%d)",
			int(math.Round(r*255)), int(math.Round(g*255)), int(math.Round(b*255))))
	}
	return colors
}

// interpolatePalette stretches a palette to n colors by linear
// interpolation between neighbours.
func interpolatePalette(palette []rgbColor, n int) []rgbColor {

	if n <= len(palette) {
		return palette[:n]
	}

	out := make([]rgbColor, n)
	for i := 0; i < n; i++ {
		pos := float64(i) / float64(n-1) * float64(len(palette)-1)
		lo := int(math.Floor(pos))
		frac := pos - float64(lo)
		if lo+1 >= len(palette) {
			out[i] = palette[len(palette)-1]
			continue
		}
		a, b := palette[lo], palette[lo+1]
		out[i] = rgbColor{
			a[0] + frac*(b[0]-a[0]),
			a[1] + frac*(b[1]-a[1]),
			a[2] + frac*(b[2]-a[2]),
		}
	}
	return out
}

// sampleColors picks n distinct colors in random order.
func sampleColors(palette []rgbColor, n int) []rgbColor {

	idx := rand.Perm(len(palette))
	if n > len(palette) {
		n = len(palette)
	}
	out := make([]rgbColor, n)
	for i := 0; i < n; i++ {
		out[i] = palette[idx[i]]
	}
	return out
}

// rgbToHLS and hlsToRGB implement the HLS color model with r, g, b in
// [0, 1].
func rgbToHLS(r, g, b float64) (h, l, s float64) {

	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	l = (minc + maxc) / 2
	if minc == maxc {
		return 0, l, 0
	}

	delta := maxc - minc
	if l <= 0.5 {
		s = delta / (maxc + minc)
	} else {
		s = delta / (2 - maxc - minc)
	}

	rc := (maxc - r) / delta
	gc := (maxc - g) / delta
	bc := (maxc - b) / delta
	switch maxc {
	case r:
		h = bc - gc
	case g:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}
	h = math.Mod(h/6, 1)
	if h < 0 {
		h++
	}
	return h, l, s
}

func hlsToRGB(h, l, s float64) (r, g, b float64) {

	if s == 0 {
		return l, l, l
	}

	var m2 float64
	if l <= 0.5 {
		m2 = l * (1 + s)
	} else {
		m2 = l + s - l*s
	}
	m1 := 2*l - m2

	return hlsValue(m1, m2, h+1.0/3), hlsValue(m1, m2, h), hlsValue(m1, m2, h-1.0/3)
}

func hlsValue(m1, m2, hue float64) float64 {
	hue = math.Mod(hue, 1)
	if hue < 0 {
		hue++
	}
	switch {
	case hue < 1.0/6:
		return m1 + (m2-m1)*hue*6
	case hue < 0.5:
		return m2
	case hue < 2.0/3:
		return m1 + (m2-m1)*(2.0/3-hue)*6
	default:
		return m1
	}
}
