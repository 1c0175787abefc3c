package viz

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mazznoer/colorgrad"

	"github.com/san-kum/heatsim/internal/export"
	"github.com/san-kum/heatsim/internal/heat"
)

const halfBlock = "▀"

// Heatmap renders the grid with half-block glyphs, two grid rows per line.
// Colours span ambient..source temperature so the scale stays fixed while
// the field evolves. The cell under the beam is drawn in accent.
func Heatmap(g *heat.Grid, src heat.Source, grad colorgrad.Gradient, accent lipgloss.Color) string {
	p := g.Params()
	lo, hi := p.AmbientTemp, math.Max(p.SourceTemp, p.AmbientTemp+1)
	beam := heat.Round(src.Position)
	br, bc := int(beam.X), int(beam.Y)

	colorAt := func(r, c int) lipgloss.Color {
		if r == br && c == bc {
			return accent
		}
		return lipgloss.Color(grad.At(export.Normalize(g.At(r, c), lo, hi)).Hex())
	}

	var sb strings.Builder
	for r := 0; r < g.Rows(); r += 2 {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < g.Cols(); c++ {
			style := lipgloss.NewStyle().Foreground(colorAt(r, c))
			if r+1 < g.Rows() {
				style = style.Background(colorAt(r+1, c))
			}
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String()
}

// framePalette builds a 256 colour GIF palette from a gradient.
func framePalette(grad colorgrad.Gradient) color.Palette {
	pal := make(color.Palette, 0, 256)
	for _, c := range grad.Colors(256) {
		pal = append(pal, c)
	}
	return pal
}

// paletted rasterises the field into a paletted image for GIF recording.
func paletted(field [][]float64, cell int, grad colorgrad.Gradient) (*image.Paletted, error) {
	img, err := export.FieldImage(field, cell, grad)
	if err != nil {
		return nil, err
	}
	dst := image.NewPaletted(img.Bounds(), framePalette(grad))
	draw.Draw(dst, dst.Bounds(), img, image.Point{}, draw.Src)
	return dst, nil
}
