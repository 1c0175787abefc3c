package server

import (
	"encoding/json"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

// Msg is a control request from a client, or the server's reply to one.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

const (
	MsgPause   = "pause"
	MsgResume  = "resume"
	MsgStatus  = "status"
	MsgPaused  = "paused"
	MsgResumed = "resumed"
	MsgError   = "error"
)

// FrameMsg is broadcast after every tick. Distance is omitted when the run
// does not track dissipation.
type FrameMsg struct {
	Tick     int           `json:"tick"`
	Time     float64       `json:"time"`
	Source   heat.Position `json:"source"`
	Distance *float64      `json:"distance,omitempty"`
	Field    [][]float64   `json:"field"`
}

func NewFrameMsg(f sim.Frame) FrameMsg {
	m := FrameMsg{
		Tick:   f.Tick,
		Time:   f.Time,
		Source: f.Source.Position,
		Field:  f.Grid.Snapshot(),
	}
	if f.HasDistance {
		d := f.Distance
		m.Distance = &d
	}
	return m
}

func encodeFrame(f sim.Frame) ([]byte, error) {
	return json.Marshal(NewFrameMsg(f))
}

func encodeMsg(m Msg) ([]byte, error) {
	return json.Marshal(m)
}
