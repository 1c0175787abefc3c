package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoHistory = errors.New("export: not enough history to chart")

// WriteRadiusChart renders heat radius against simulated time as a PNG.
func WriteRadiusChart(w io.Writer, times, distances []float64) error {
	n := len(times)
	if len(distances) < n {
		n = len(distances)
	}
	if n < 2 {
		return ErrNoHistory
	}

	graph := chart.Chart{
		Width:  800,
		Height: 300,
		XAxis: chart.XAxis{
			Name:  "time (s)",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.1f", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  "radius (cells)",
			Style: chart.Style{FontSize: 10.0},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "heat radius",
				XValues: times[:n],
				YValues: distances[:n],
				Style:   chart.Style{StrokeColor: drawing.Color{R: 255, G: 120, B: 0, A: 255}, StrokeWidth: 3.0},
			},
		},
	}

	return graph.Render(chart.PNG, w)
}
