package nbody

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SnapshotSink receives periodic copies of the simulation state
type SnapshotSink interface {
	OnStart(totalSteps int, snapEvery int) error
	OnSnapshot(elapsed float64, date time.Time, bodies []Body) error
	OnEnd(elapsed float64) error
	Close() error
}

// JSONLSnapshotWriter writes one JSON object per snapshot to disk
type JSONLSnapshotWriter struct {
	f  *os.File
	bw *bufio.Writer
}

type jsonlSnapshot struct {
	ElapsedSeconds float64        `json:"elapsed_s"`
	Date           string         `json:"date"`
	Bodies         []snapshotBody `json:"bodies"`
}

type snapshotBody struct {
	Name     string     `json:"name,omitempty"`
	Position [3]float32 `json:"position"`
	Radius   float32    `json:"radius"`
	Color    string     `json:"color"`
}

func NewJSONLSnapshotWriter(path string) (*JSONLSnapshotWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONLSnapshotWriter{f: f, bw: bufio.NewWriter(f)}, nil
}

func (w *JSONLSnapshotWriter) OnStart(totalSteps int, snapEvery int) error { return nil }

func (w *JSONLSnapshotWriter) OnSnapshot(elapsed float64, date time.Time, bodies []Body) error {
	rec := jsonlSnapshot{
		ElapsedSeconds: elapsed,
		Date:           date.Format(time.DateOnly),
		Bodies:         make([]snapshotBody, len(bodies)),
	}
	for i, b := range bodies {
		rec.Bodies[i] = snapshotBody{
			Name:     b.Name,
			Position: [3]float32{b.Position.X, b.Position.Y, b.Position.Z},
			Radius:   b.Radius,
			Color:    b.Color.Hex(),
		}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.bw.Write(data); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

func (w *JSONLSnapshotWriter) OnEnd(elapsed float64) error { return w.bw.Flush() }

func (w *JSONLSnapshotWriter) Close() error {
	if w.bw != nil {
		_ = w.bw.Flush()
	}
	if w.f != nil {
		return w.f.Close()
	}
	return nil
}

// MultiSink fans snapshots out to several sinks in order. The first error
// stops the fan-out; Close closes every sink and returns the first error.
func MultiSink(sinks ...SnapshotSink) SnapshotSink {
	return multiSink(sinks)
}

type multiSink []SnapshotSink

func (m multiSink) OnStart(totalSteps, snapEvery int) error {
	for _, s := range m {
		if err := s.OnStart(totalSteps, snapEvery); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) OnSnapshot(elapsed float64, date time.Time, bodies []Body) error {
	for _, s := range m {
		if err := s.OnSnapshot(elapsed, date, bodies); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) OnEnd(elapsed float64) error {
	for _, s := range m {
		if err := s.OnEnd(elapsed); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run drives the simulation for totalSteps, handing a snapshot to sink every
// snapEvery steps (and after the last one). A nil sink or snapEvery <= 0
// disables snapshots. The context is checked between steps.
func (s *Simulation) Run(ctx context.Context, totalSteps, snapEvery int, sink SnapshotSink, epoch time.Time) error {
	if sink != nil && snapEvery > 0 {
		if err := sink.OnStart(totalSteps, snapEvery); err != nil {
			return fmt.Errorf("snapshot start: %w", err)
		}
	} else {
		sink = nil
	}

	for step := 0; step < totalSteps; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(); err != nil {
			return err
		}
		if sink != nil && ((step+1)%snapEvery == 0 || step == totalSteps-1) {
			if err := sink.OnSnapshot(s.elapsed, s.Date(epoch), s.bodies); err != nil {
				return fmt.Errorf("snapshot at step %d: %w", step+1, err)
			}
		}
	}

	if sink != nil {
		if err := sink.OnEnd(s.elapsed); err != nil {
			return fmt.Errorf("snapshot end: %w", err)
		}
	}
	s.logger.Debug("run finished", "steps", totalSteps, "elapsed_s", s.elapsed)
	return nil
}
