package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/heatsim/internal/heat"
)

type ExportData struct {
	Pattern   string             `json:"pattern"`
	Rows      int                `json:"rows"`
	Cols      int                `json:"cols"`
	Radius    float64            `json:"source_radius"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Times     []float64          `json:"times"`
	Sources   []heat.Position    `json:"sources"`
	Distances []float64          `json:"distances,omitempty"`
	Field     [][]float64        `json:"field,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
