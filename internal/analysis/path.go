package analysis

import (
	"strings"

	"github.com/san-kum/heatsim/internal/heat"
)

// PathToASCII draws the beam path over a rows x cols grid scaled into a
// width x height character canvas. X is the row coordinate. The last
// position is marked with 'O'.
func PathToASCII(points []heat.Position, rows, cols, width, height int) string {
	if len(points) == 0 || rows <= 0 || cols <= 0 || width <= 0 || height <= 0 {
		return ""
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	place := func(p heat.Position) (int, int) {
		row := int(p.X / float64(max(rows-1, 1)) * float64(height-1))
		col := int(p.Y / float64(max(cols-1, 1)) * float64(width-1))
		return row, col
	}

	// Crosshair through the grid centre
	c := heat.Position{X: float64(rows / 2), Y: float64(cols / 2)}
	crow, ccol := place(c)
	for col := 0; col < width; col++ {
		if crow >= 0 && crow < height {
			canvas[crow][col] = '─'
		}
	}
	for row := 0; row < height; row++ {
		if ccol >= 0 && ccol < width {
			canvas[row][ccol] = '│'
		}
	}

	for _, p := range points {
		row, col := place(p)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}
	if row, col := place(points[len(points)-1]); row >= 0 && row < height && col >= 0 && col < width {
		canvas[row][col] = 'O'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
