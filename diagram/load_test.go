package diagram

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowspark/geometry"
	"flowspark/scene"
	"flowspark/surface"
)

const sampleScene = `{
  "blocks": [
    {"id": "A", "x": 0, "y": 0, "w": 100, "h": 50, "label": "A"},
    {"id": "B", "x": 300, "y": 0, "w": 100, "h": 50, "label": "B"},
    {"id": "N", "x": 0, "y": 200, "w": 120, "h": 40, "label": "note", "note": true}
  ],
  "edges": [
    {"from": "A", "to": "B", "color": "motor", "sparks": 3, "spark_speed": 1},
    {"start": {"block": "B", "edge": "bottom"}, "end": {"block": "A", "edge": "bottom", "t": 0.25}, "arrow": false}
  ]
}`

func TestLoadJSON(t *testing.T) {
	d, _ := newTestDiagram(t)
	require.NoError(t, d.LoadJSON([]byte(sampleScene)))

	require.Len(t, d.Blocks(), 3)
	conns := d.Connections()
	require.Len(t, conns, 2)

	assert.Equal(t, "rgb(171,71,188)", conns[0].Stroke())
	assert.Equal(t, geometry.Point{X: 104, Y: 25}, conns[0].Curve().P0)
	assert.False(t, conns[1].Spec().Arrow)

	n, ok := d.Block("N")
	require.True(t, ok)
	assert.True(t, n.IsNote())
}

func TestLoadMergesIntoExisting(t *testing.T) {
	d, _ := newTestDiagram(t)
	_, err := d.AddBlock("A", 0, 0, 100, 50, "A")
	require.NoError(t, err)

	s := &scene.Scene{
		Blocks: []scene.Block{{ID: "B", X: 300, Width: 100, Height: 50}},
		Connections: []scene.Connection{
			scene.NewConnection(scene.Endpoint{Block: "A", Edge: "right"}, scene.Endpoint{Block: "B", Edge: "left"}),
		},
	}
	require.NoError(t, d.Load(s))
	assert.Len(t, d.Blocks(), 2)
	assert.Len(t, d.Connections(), 1)
}

func TestLoadIsAtomic(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind string
		want error
	}{
		{
			name: "unknown block",
			doc:  `{"blocks":[{"id":"A","w":1,"h":1}],"connections":[{"from":"A","to":"Z"}]}`,
			kind: "connection",
			want: ErrUnknownBlock,
		},
		{
			name: "duplicate id",
			doc:  `{"blocks":[{"id":"A","w":1,"h":1},{"id":"A","w":1,"h":1}]}`,
			kind: "block",
			want: ErrDuplicateBlock,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, doc := newTestDiagram(t)
			before := doc.Len()

			err := d.LoadJSON([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.kind, le.Kind)

			assert.Empty(t, d.Blocks())
			assert.Empty(t, d.Connections())
			assert.Equal(t, before, doc.Len())
		})
	}
}

func TestLoadChecksBlocksBeforeAdding(t *testing.T) {
	tests := []struct {
		name  string
		block scene.Block
	}{
		{"blank id", scene.Block{ID: "  ", Width: 10, Height: 10}},
		{"infinite x", scene.Block{ID: "Z", X: math.Inf(1), Width: 10, Height: 10}},
		{"nan y", scene.Block{ID: "Z", Y: math.NaN(), Width: 10, Height: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, doc := newTestDiagram(t)
			before := doc.Len()

			err := d.Load(&scene.Scene{Blocks: []scene.Block{
				{ID: "A", Width: 10, Height: 10},
				tt.block,
			}})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidBlock)
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, 1, le.Index)

			assert.Empty(t, d.Blocks())
			assert.Equal(t, before, doc.Len())
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	d, _ := newTestDiagram(t)
	err := d.LoadJSON([]byte(`{"blocks": [`))
	assert.ErrorIs(t, err, scene.ErrMalformed)

	err = d.Load(&scene.Scene{Blocks: []scene.Block{{ID: "A", Width: -1, Height: 1}}})
	assert.ErrorIs(t, err, scene.ErrMalformed)
	assert.Empty(t, d.Blocks())
}

func TestLoadLenient(t *testing.T) {
	d, _ := newTestDiagram(t)
	s := &scene.Scene{
		Blocks: []scene.Block{
			{ID: "A", Width: 100, Height: 50},
			{ID: "bad", Width: 0, Height: 50},
			{ID: "A", Width: 10, Height: 10},
			{ID: "B", X: 300, Width: 100, Height: 50},
		},
		Connections: []scene.Connection{
			scene.NewConnection(scene.Endpoint{Block: "A", Edge: "right"}, scene.Endpoint{Block: "missing", Edge: "left"}),
			scene.NewConnection(scene.Endpoint{Block: "A", Edge: "right"}, scene.Endpoint{Block: "B", Edge: "left"}),
		},
	}

	errs := d.LoadLenient(s)
	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[0], scene.ErrMalformed)
	assert.ErrorIs(t, errs[1], ErrDuplicateBlock)
	assert.ErrorIs(t, errs[2], ErrUnknownBlock)

	var le *LoadError
	require.True(t, errors.As(errs[2], &le))
	assert.Equal(t, "connection", le.Kind)
	assert.Equal(t, 0, le.Index)

	assert.Len(t, d.Blocks(), 2)
	assert.Len(t, d.Connections(), 1)
}

func TestSnapshotReflectsMoves(t *testing.T) {
	d, _ := newTestDiagram(t)
	require.NoError(t, d.LoadJSON([]byte(sampleScene)))
	a, _ := d.Block("A")
	require.NoError(t, a.SetPos(5, 6))

	s := d.Snapshot()
	require.Len(t, s.Blocks, 3)
	assert.Equal(t, scene.Block{ID: "A", X: 5, Y: 6, Width: 100, Height: 50, Label: "A"}, s.Blocks[0])
	assert.True(t, s.Blocks[2].Note)
	require.Len(t, s.Connections, 2)
	assert.Equal(t, "rgb(171,71,188)", s.Connections[0].Color)
	assert.Equal(t, scene.Endpoint{Block: "A", Edge: "bottom", T: 0.25}, s.Connections[1].End)

	// The snapshot loads into a fresh diagram unchanged.
	other, _ := newTestDiagram(t)
	require.NoError(t, other.Load(s))
	assert.Equal(t, s, other.Snapshot())
}

func TestLaunch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
blocks:
  - {id: C, x: 600, y: 0, w: 100, h: 50}
connections:
  - {from: B, to: C, sparks: 2}
`), 0o644))

	on := true
	var setupSaw int
	d, err := Launch(surface.NewDocument(1000, 720), DefaultConfig(), LaunchOptions{
		JSON:      []byte(sampleScene),
		Path:      path,
		Overrides: scene.Overrides{Emitter: &on},
		Setup: func(d *Diagram) error {
			setupSaw = len(d.Blocks())
			_, err := d.AddBlock("D", 0, 400, 50, 50, "")
			return err
		},
	})
	require.NoError(t, err)

	assert.True(t, d.Running())
	assert.Equal(t, 4, setupSaw)
	assert.Len(t, d.Blocks(), 5)
	for _, c := range d.Connections() {
		assert.True(t, c.Spec().Emitter)
	}
}

func TestLaunchErrors(t *testing.T) {
	_, err := Launch(nil, DefaultConfig(), LaunchOptions{})
	assert.ErrorIs(t, err, ErrNoSurface)

	_, err = Launch(surface.NewDocument(10, 10), DefaultConfig(), LaunchOptions{JSON: []byte(`{"connections":[{"from":"x","to":"y"}]}`)})
	assert.ErrorIs(t, err, ErrUnknownBlock)

	d, err := Launch(surface.NewDocument(10, 10), DefaultConfig(), LaunchOptions{
		JSON:    []byte(`{"connections":[{"from":"x","to":"y"}]}`),
		Lenient: true,
	})
	require.NoError(t, err)
	assert.Empty(t, d.Connections())

	boom := errors.New("boom")
	_, err = Launch(surface.NewDocument(10, 10), DefaultConfig(), LaunchOptions{Setup: func(*Diagram) error { return boom }})
	assert.ErrorIs(t, err, boom)
}

func TestConfigIsCopied(t *testing.T) {
	cfg := DefaultConfig()
	d, err := New(surface.NewDocument(10, 10), cfg)
	require.NoError(t, err)

	cfg.Palette["motor"] = "red"
	assert.Equal(t, "rgb(171,71,188)", d.ResolveColor("motor"))
	assert.Equal(t, "plum", d.ResolveColor("plum"))
	assert.Equal(t, "", d.ResolveColor(""))

	zero, err := New(surface.NewDocument(10, 10), Config{})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, zero.Config().Width)
	assert.Equal(t, geometry.DefaultPush, zero.push)
}
