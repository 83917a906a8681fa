package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/phanxgames/willowtest/bounds"
)

// Overlap diagram limits in character cells.
const (
	MaxDiagramCols = 60
	MaxDiagramRows = 20
)

var diagramStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder())

// renderOverlap is the diagram hook used by failed overlap checks.
var renderOverlap = RenderOverlap

// cellSpan maps the world interval [lo, hi) onto cells of a grid that
// covers [origin, origin+extent) with n cells. Non-empty intervals always
// cover at least one cell.
func cellSpan(lo, hi, origin, extent float64, n int) (int, int) {
	if extent <= 0 {
		return 0, n
	}
	scale := float64(n) / extent
	c0 := int(math.Floor((lo - origin) * scale))
	c1 := int(math.Ceil((hi - origin) * scale))
	c0 = max(0, min(c0, n-1))
	c1 = max(c0+1, min(c1, n))
	return c0, c1
}

func gridSize(extent float64, limit int) int {
	return max(1, min(limit, int(math.Ceil(extent))))
}

// RenderOverlap draws a, b, and their intersection as a character grid of
// at most MaxDiagramCols by MaxDiagramRows cells covering the union of a
// and b. Each axis is scaled on its own. Cells of a are 'A', cells of b are
// 'B', and cells of the intersection are '#' regardless of what was drawn
// there first. The grid is boxed and followed by a legend line.
func RenderOverlap(a, b, intersection bounds.Rect, nameA, nameB string) string {
	u := a.Union(b)
	cols := gridSize(u.Width, MaxDiagramCols)
	rows := gridSize(u.Height, MaxDiagramRows)

	grid := make([][]byte, rows)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", cols))
	}
	fill := func(r bounds.Rect, ch byte) {
		x0, x1 := cellSpan(r.X, r.Right(), u.X, u.Width, cols)
		y0, y1 := cellSpan(r.Y, r.Bottom(), u.Y, u.Height, rows)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				grid[y][x] = ch
			}
		}
	}
	fill(a, 'A')
	fill(b, 'B')
	if intersection.Width > 0 || intersection.Height > 0 {
		fill(intersection, '#')
	}

	lines := make([]string, rows)
	for i, row := range grid {
		lines[i] = string(row)
	}
	legend := fmt.Sprintf("A = %s  B = %s  # = overlap %s px  (1 cell = %.3gx%.3g px)",
		nameA, nameB, dims(intersection), u.Width/float64(cols), u.Height/float64(rows))
	return diagramStyle.Render(strings.Join(lines, "\n")) + "\n" + legend
}

// OverflowReport lists how far child extends past each edge of parent, one
// line per direction with a strictly positive overflow, in the order left,
// right, top, bottom. A contained child yields no lines.
func OverflowReport(child, parent bounds.Rect) []string {
	dirs := []struct {
		name string
		edge string
		by   float64
	}{
		{"Left", "left", parent.X - child.X},
		{"Right", "right", child.Right() - parent.Right()},
		{"Top", "top", parent.Y - child.Y},
		{"Bottom", "bottom", child.Bottom() - parent.Bottom()},
	}
	var out []string
	for _, d := range dirs {
		if d.by > 0 {
			out = append(out, fmt.Sprintf("%s: %gpx past parent %s edge", d.name, d.by, d.edge))
		}
	}
	return out
}
