package export

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/mazznoer/colorgrad"
)

var ErrEmptyField = errors.New("export: empty field")

// FieldImage rasterises the field, one cell x cell block per grid cell.
func FieldImage(field [][]float64, cell int, grad colorgrad.Gradient) (*image.RGBA, error) {
	if len(field) == 0 || len(field[0]) == 0 {
		return nil, ErrEmptyField
	}
	if cell < 1 {
		cell = 1
	}

	rows, cols := len(field), len(field[0])
	img := image.NewRGBA(image.Rect(0, 0, cols*cell, rows*cell))
	lo, hi := Bounds(field)

	for r, row := range field {
		for c, v := range row {
			cr, cg, cb := grad.At(Normalize(v, lo, hi)).RGB255()
			px := color.RGBA{R: cr, G: cg, B: cb, A: 255}
			for dy := 0; dy < cell; dy++ {
				for dx := 0; dx < cell; dx++ {
					img.SetRGBA(c*cell+dx, r*cell+dy, px)
				}
			}
		}
	}
	return img, nil
}

func WriteFieldPNG(w io.Writer, field [][]float64, cell int, grad colorgrad.Gradient) error {
	img, err := FieldImage(field, cell, grad)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
