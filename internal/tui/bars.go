// SPDX-License-Identifier: MIT
package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"
)

// FullScale is the bin value that fills the chart at gain 1.
const FullScale = 32768.0

// barChars holds the eighth-block glyphs, index = filled eighths.
var barChars = []rune(" ▁▂▃▄▅▆▇█")

// groupColumns folds bins into len(dst) columns, each taking the maximum
// of its group. len(dst) must not exceed len(bins).
func groupColumns(bins, dst []float64) {
	n, cols := len(bins), len(dst)
	for c := range cols {
		lo := c * n / cols
		hi := (c + 1) * n / cols
		if hi <= lo {
			hi = lo + 1
		}
		peak := 0.0
		for _, v := range bins[lo:hi] {
			if v = math.Abs(v); v > peak {
				peak = v
			}
		}
		dst[c] = peak
	}
}

// barEighths converts a bin value into a bar height in eighths of a row.
// Like the classic histogram every bar is at least one unit tall.
func barEighths(value, gain float64, rows int) float64 {
	limit := float64(rows * 8)
	h := 1 + value*gain*limit/FullScale
	if h > limit {
		return limit
	}
	return h
}

// renderBars draws heights (in eighths) as rows lines, top first.
func renderBars(heights []float64, rows int) string {
	var sb strings.Builder
	line := make([]rune, len(heights))
	for r := range rows {
		row := rows - 1 - r // 0 = bottom
		base := row * 8
		for c, h := range heights {
			fill := int(h) - base
			switch {
			case fill >= 8:
				line[c] = barChars[8]
			case fill <= 0:
				line[c] = barChars[0]
			default:
				line[c] = barChars[fill]
			}
		}
		sb.WriteString(barStyle(row, rows).Render(string(line)))
		if r < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// springField animates each column toward its target height.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int, frequency, damping float64) springField {
	return springField{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (s *springField) resize(n int) {
	if len(s.pos) == n {
		return
	}
	s.pos = make([]float64, n)
	s.vel = make([]float64, n)
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	if p < 0 {
		return 0
	}
	return p
}
