package tui

import (
	"math"
	"strings"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"

	"github.com/felixgeelhaar/blockkit"
)

// cellWidth is the terminal width of one stage cell; emoji glyphs take two
const cellWidth = 2

// gridCell maps a stage position to a grid cell. Row 0 is the top of the
// stage, where y is largest. Positions outside the stage are pinned to the
// border cells.
func gridCell(p blockkit.Vec, half float64, cols, rows int) (col, row int) {
	return axisCell(p.X, half, cols), rows - 1 - axisCell(p.Y, half, rows)
}

func axisCell(v, half float64, n int) int {
	if n <= 1 || half <= 0 {
		return 0
	}
	t := (v + half) / (2 * half)
	t = min(max(t, 0), 1)
	i, err := safecast.Convert[int](math.Round(t * float64(n-1)))
	if err != nil {
		return 0
	}
	return i
}

// fitCell pads or truncates glyph to exactly one cell
func fitCell(glyph string) string {
	if glyph == "" {
		return strings.Repeat(" ", cellWidth)
	}
	return runewidth.FillRight(runewidth.Truncate(glyph, cellWidth, ""), cellWidth)
}

// bubble renders speech as a single line no wider than width cells
func bubble(speech string, width int) string {
	if speech == "" {
		return ""
	}
	return runewidth.Truncate("💬 "+speech, width, "…")
}

// drawStage renders the stage as rows of cells. The sprite is drawn last so
// it covers the goal and the obstacle.
func drawStage(w blockkit.World, theme themeGlyphs, sprite blockkit.Vec, cols, rows int) []string {
	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
	}
	put := func(p blockkit.Vec, glyph string) {
		c, r := gridCell(p, w.HalfExtent, cols, rows)
		grid[r][c] = glyph
	}

	if w.Goal != nil {
		put(*w.Goal, theme.goal)
	}
	if w.Obstacle != nil {
		put(*w.Obstacle, theme.obstacle)
	}
	put(sprite, theme.sprite)

	lines := make([]string, rows)
	for r, row := range grid {
		var b strings.Builder
		for _, glyph := range row {
			if glyph == "" {
				glyph = " ·"
			}
			b.WriteString(fitCell(glyph))
		}
		lines[r] = b.String()
	}
	return lines
}

type themeGlyphs struct {
	sprite, goal, obstacle string
}

func withDefaults(t themeGlyphs) themeGlyphs {
	if t.sprite == "" {
		t.sprite = "🐱"
	}
	if t.goal == "" {
		t.goal = "⭐"
	}
	if t.obstacle == "" {
		t.obstacle = "🧱"
	}
	return t
}
