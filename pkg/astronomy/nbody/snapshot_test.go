package nbody

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/orbitalsim/pkg/astronomy/ephemerides"
)

type countingSink struct {
	started   bool
	snapshots []float64
	ended     bool
}

func (c *countingSink) OnStart(int, int) error { c.started = true; return nil }
func (c *countingSink) OnSnapshot(elapsed float64, _ time.Time, _ []Body) error {
	c.snapshots = append(c.snapshots, elapsed)
	return nil
}
func (c *countingSink) OnEnd(float64) error { c.ended = true; return nil }
func (c *countingSink) Close() error        { return nil }

func TestRunWritesJSONLSnapshots(t *testing.T) {
	sim, err := New(ephemerides.SolarSystem(), 86400, 4, StarDominant, WithSeed(6))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshots.jsonl")
	w, err := NewJSONLSnapshotWriter(path)
	require.NoError(t, err)

	require.NoError(t, sim.Run(context.Background(), 10, 5, w, DefaultEpoch))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []jsonlSnapshot
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		var rec jsonlSnapshot
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		lines = append(lines, rec)
	}
	require.NoError(t, sc.Err())
	require.Len(t, lines, 2)

	assert.Equal(t, "2022-01-06", lines[0].Date)
	assert.Equal(t, "2022-01-11", lines[1].Date)
	assert.InDelta(t, 10*86400.0, lines[1].ElapsedSeconds, 1e-6)
	require.Len(t, lines[1].Bodies, 13)
	assert.Equal(t, "Sun", lines[1].Bodies[0].Name)
	assert.Equal(t, "#fdb813", lines[1].Bodies[0].Color)
}

func TestRunSnapshotsFinalStep(t *testing.T) {
	sim, err := New(ephemerides.SolarSystem(), tenDaysStep, 0, StarDominant)
	require.NoError(t, err)

	sink := &countingSink{}
	require.NoError(t, sim.Run(context.Background(), 7, 3, sink, DefaultEpoch))

	assert.True(t, sink.started)
	assert.True(t, sink.ended)
	// steps 3, 6 and the last one
	assert.Len(t, sink.snapshots, 3)
	assert.Equal(t, int64(7), sim.Steps())
}

func TestRunWithoutSink(t *testing.T) {
	sim, err := New(ephemerides.SolarSystem(), tenDaysStep, 0, StarDominant)
	require.NoError(t, err)

	require.NoError(t, sim.Run(context.Background(), 5, 0, nil, DefaultEpoch))
	assert.Equal(t, int64(5), sim.Steps())
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	sim, err := New(ephemerides.SolarSystem(), tenDaysStep, 0, StarDominant)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sim.Run(ctx, 100, 10, &countingSink{}, DefaultEpoch)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sim.Steps())
}

func TestMultiSinkFansOut(t *testing.T) {
	sim, err := New(ephemerides.SolarSystem(), tenDaysStep, 0, StarDominant)
	require.NoError(t, err)

	a, b := &countingSink{}, &countingSink{}
	require.NoError(t, sim.Run(context.Background(), 4, 2, MultiSink(a, b), DefaultEpoch))

	assert.Equal(t, a.snapshots, b.snapshots)
	assert.Len(t, a.snapshots, 2)
	assert.True(t, a.ended && b.ended)
}
