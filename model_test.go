package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowspark/diagram"
	"flowspark/geometry"
	"flowspark/scene"
	"flowspark/surface"
)

const testScene = `{
  "blocks": [
    {"id": "A", "x": 200, "y": 200, "w": 100, "h": 50, "label": "Alpha"},
    {"id": "B", "x": 600, "y": 200, "w": 100, "h": 50, "label": "Beta"}
  ],
  "connections": [
    {"from": "A", "to": "B", "color": "motor", "sparks": 2}
  ]
}`

func newTestModel(t *testing.T) model {
	t.Helper()
	config := defaultConfig()
	config.SaveDirectory = t.TempDir()

	cfg := config.diagramConfig()
	doc := surface.NewDocument(cfg.Width, cfg.Height)
	d, err := diagram.Launch(doc, cfg, diagram.LaunchOptions{JSON: []byte(testScene)})
	require.NoError(t, err)

	m := initialModel(config, doc, d, "test")
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out
}

func press(t *testing.T, m model, k string) (model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	if k == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace}
	} else {
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

// cellOf returns the terminal cell showing scene point p.
func cellOf(m model, p geometry.Point) (int, int) {
	dev := m.doc.Viewport().Apply(p)
	return int(dev.X), int(dev.Y)
}

func TestModelResizeFitsViewport(t *testing.T) {
	m := newTestModel(t)
	view := m.doc.Viewport()

	assert.InDelta(t, 0.1, view.ScaleX, 1e-9)
	assert.InDelta(t, view.ScaleX/surface.CellAspect, view.ScaleY, 1e-9)
	assert.Equal(t, 38, m.canvasRows())
	assert.Equal(t, 100, m.canvasCols())
}

func TestModelMouseDrag(t *testing.T) {
	m := newTestModel(t)
	a, ok := m.diagram.Block("A")
	require.True(t, ok)
	before := m.diagram.Connections()[0].Curve().P0

	x, y := cellOf(m, geometry.Point{X: 250, Y: 225})
	m = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.True(t, m.dragging)
	assert.True(t, a.Dragging())

	m = update(t, m, tea.MouseMsg{X: x + 10, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	ax, ay := a.Pos()
	assert.InDelta(t, 300, ax, 1e-6)
	assert.InDelta(t, 200, ay, 1e-6)
	assert.InDelta(t, before.X+100, m.diagram.Connections()[0].Curve().P0.X, 1e-6)

	m = update(t, m, tea.MouseMsg{X: x + 10, Y: y, Action: tea.MouseActionRelease})
	assert.False(t, m.dragging)
	assert.False(t, a.Dragging())

	// Motion without a held button is ignored.
	m = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	ax, _ = a.Pos()
	assert.InDelta(t, 300, ax, 1e-6)
}

func TestModelPressOnEmptySpace(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionRelease})

	for _, b := range m.diagram.Blocks() {
		assert.False(t, b.Dragging())
	}
	ax, ay := m.diagram.Blocks()[0].Pos()
	assert.Equal(t, 200.0, ax)
	assert.Equal(t, 200.0, ay)
}

func TestModelPan(t *testing.T) {
	m := newTestModel(t)
	origin := m.doc.Viewport()

	m, _ = press(t, m, "l")
	assert.InDelta(t, origin.OffsetX-panStep, m.doc.Viewport().OffsetX, 1e-9)

	m, _ = press(t, m, "J")
	assert.InDelta(t, origin.OffsetY-2*panStep/surface.CellAspect, m.doc.Viewport().OffsetY, 1e-9)

	m = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.InDelta(t, origin.OffsetY-panStep/surface.CellAspect, m.doc.Viewport().OffsetY, 1e-9)

	m, _ = press(t, m, "0")
	assert.Equal(t, origin, m.doc.Viewport())
}

func TestModelDragAfterPan(t *testing.T) {
	m := newTestModel(t)
	for range 5 {
		m, _ = press(t, m, "h")
	}
	a, _ := m.diagram.Block("A")

	x, y := cellOf(m, geometry.Point{X: 250, Y: 225})
	m = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, a.Dragging())
	m = update(t, m, tea.MouseMsg{X: x, Y: y + 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: x, Y: y + 2, Action: tea.MouseActionRelease})

	ax, ay := a.Pos()
	assert.InDelta(t, 200, ax, 1e-6)
	assert.InDelta(t, 240, ay, 1e-6)
}

func TestModelToggleAndTick(t *testing.T) {
	m := newTestModel(t)
	require.True(t, m.diagram.Running())

	m, cmd := press(t, m, " ")
	assert.False(t, m.diagram.Running())
	assert.Equal(t, "paused", m.statusMessage)
	assert.NotNil(t, cmd)

	paused := m.diagram.Elapsed()
	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(model)
	assert.NotNil(t, cmd, "ticks keep coming while paused")
	assert.Equal(t, paused, m.diagram.Elapsed())

	m, _ = press(t, m, " ")
	assert.True(t, m.diagram.Running())
	time.Sleep(2 * time.Millisecond)
	m = update(t, m, tickMsg(time.Now()))
	assert.Greater(t, m.diagram.Elapsed(), paused)
	assert.Len(t, m.diagram.Connections()[0].Sparks(), 2)
}

func TestModelStatusExpires(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "r")
	require.Equal(t, "paths refreshed", m.statusMessage)

	m = update(t, m, clearStatusMsg(m.statusAt.Add(-time.Second)))
	assert.Equal(t, "paths refreshed", m.statusMessage, "stale expiry is ignored")

	m = update(t, m, clearStatusMsg(m.statusAt))
	assert.Empty(t, m.statusMessage)
}

func TestModelExports(t *testing.T) {
	m := newTestModel(t)
	m.diagram.Tick(0.1, 0.1)

	tests := []struct {
		key  string
		file string
		want string
	}{
		{"s", "test.svg", `<svg`},
		{"t", "test.txt", "Alpha"},
		{"e", "test.png", "\x89PNG"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			next, _ := press(t, m, tt.key)
			path := filepath.Join(m.config.SaveDirectory, tt.file)
			assert.Equal(t, "saved "+path, next.statusMessage)
			assert.Empty(t, next.errorMessage)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.want)
		})
	}
}

func TestModelExportError(t *testing.T) {
	m := newTestModel(t)
	m.config.SaveDirectory = ""
	m.filename = filepath.Join(t.TempDir(), "missing", "x")

	m, _ = press(t, m, "s")
	assert.Contains(t, m.errorMessage, "Error exporting")
	assert.Empty(t, m.statusMessage)
}

func TestModelHelpAndQuit(t *testing.T) {
	m := newTestModel(t)
	rows := m.canvasRows()

	m, _ = press(t, m, "?")
	assert.True(t, m.help.ShowAll)
	assert.Less(t, m.canvasRows(), rows)

	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	view := m.View()

	assert.Len(t, strings.Split(view, "\n"), m.height)
	plain := strings.Join(surface.Plain(strings.Split(view, "\n")), "\n")
	assert.Contains(t, plain, "Alpha")
	assert.Contains(t, plain, "running")
	assert.Contains(t, plain, "blocks=2")

	empty := initialModel(m.config, m.doc, m.diagram, "x")
	assert.Empty(t, empty.View())
}

func TestSceneJSONFollowsMoves(t *testing.T) {
	m := newTestModel(t)
	a, _ := m.diagram.Block("A")
	require.NoError(t, a.SetPos(10, 20))

	text, err := sceneJSON(m.diagram)
	require.NoError(t, err)

	s, err := scene.ParseJSON([]byte(text), nil)
	require.NoError(t, err)
	require.Len(t, s.Blocks, 2)
	assert.Equal(t, 10.0, s.Blocks[0].X)
	assert.Equal(t, 20.0, s.Blocks[0].Y)
	require.Len(t, s.Connections, 1)
	assert.Equal(t, "rgb(171,71,188)", s.Connections[0].Color)
}

func TestExportBase(t *testing.T) {
	tests := map[string]string{
		"":                   "flowspark",
		"scene.json":         "scene",
		"dir/brain.map.yaml": "brain.map",
		"/abs/path/noext":    "noext",
	}
	for in, want := range tests {
		assert.Equal(t, want, exportBase(in), in)
	}
}

func TestFrameInterval(t *testing.T) {
	assert.Equal(t, 20*time.Millisecond, frameInterval(50))
	assert.Equal(t, frameInterval(defaultFPS), frameInterval(0))
}

func TestLaunchDemoScene(t *testing.T) {
	config := defaultConfig()
	config.Emitter = true
	config.MaxLive = 2

	d, doc, err := launch(config, &options{}, newLogger(io.Discard, config.LogLevel), nil)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.True(t, d.Running())
	assert.Len(t, d.Blocks(), 6)
	for _, c := range d.Connections() {
		assert.True(t, c.Spec().Emitter)
		assert.NotZero(t, c.Spec().MaxLive)
	}
}
