package export

import (
	"fmt"
	"strings"

	"github.com/mazznoer/colorgrad"

	"github.com/san-kum/heatsim/internal/heat"
)

// FieldToSVG renders the field as a grid of coloured squares, cell pixels each.
func FieldToSVG(field [][]float64, cell int, grad colorgrad.Gradient) string {
	if len(field) == 0 || len(field[0]) == 0 {
		return ""
	}
	if cell < 1 {
		cell = 1
	}

	rows, cols := len(field), len(field[0])
	width, height := cols*cell, rows*cell
	lo, hi := Bounds(field)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">
`, width, height, width, height))

	for r, row := range field {
		for c, v := range row {
			col := grad.At(Normalize(v, lo, hi))
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>
`, c*cell, r*cell, cell, cell, col.Hex()))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws the beam path over a rows x cols grid. X is the row
// coordinate so it maps to the vertical axis.
func TrajectoryToSVG(points []heat.Position, rows, cols, cell int, strokeColor string) string {
	if len(points) < 2 || rows <= 0 || cols <= 0 {
		return ""
	}
	if cell < 1 {
		cell = 1
	}

	width, height := cols*cell, rows*cell

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	half := float64(cell) / 2
	for i, p := range points {
		x := p.Y*float64(cell) + half
		y := p.X*float64(cell) + half

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
