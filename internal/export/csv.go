package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/heatsim/internal/heat"
)

// WriteHistoryCSV writes one row per tick: time, source x, source y and,
// when distances covers every tick, the heat radius.
func WriteHistoryCSV(w io.Writer, times []float64, sources []heat.Position, distances []float64) error {
	cw := csv.NewWriter(w)

	tracked := len(times) > 0 && len(distances) == len(times)
	header := []string{"time", "x", "y"}
	if tracked {
		header = append(header, "distance")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, t := range times {
		row := []string{FormatFloat(t), "0", "0"}
		if i < len(sources) {
			row[1], row[2] = FormatFloat(sources[i].X), FormatFloat(sources[i].Y)
		}
		if tracked {
			row = append(row, FormatFloat(distances[i]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFieldCSV writes the field one grid row per line.
func WriteFieldCSV(w io.Writer, field [][]float64) error {
	cw := csv.NewWriter(w)
	for _, row := range field {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = FormatFloat(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
