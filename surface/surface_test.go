package surface

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowspark/geometry"
)

func sampleDocument() (*Document, Element) {
	d := NewDocument(400, 200)
	d.Shape(nil, KindGrid, Attrs{AttrSpacing: 24.0})
	defs := d.Group(nil, "defs")
	marker := d.Shape(defs, KindMarker, nil)

	blocks := d.Group(nil, "blocks")
	g := d.Group(blocks, "block")
	d.Shape(g, KindRect, Attrs{AttrX: 10.0, AttrY: 10.0, AttrWidth: 100.0, AttrHeight: 50.0, AttrCorner: 14.0})
	d.Text(g, []string{"Motor", "Cortex <A&B>"}, Attrs{AttrX: 60.0, AttrY: 30.0, AttrLineHeight: 18.0})

	conns := d.Group(nil, "connections")
	d.Shape(conns, KindPath, Attrs{
		AttrPath:        geometry.Cubic{P0: geometry.Point{X: 114, Y: 35}, C1: geometry.Point{X: 180, Y: 35}, C2: geometry.Point{X: 220, Y: 35}, P3: geometry.Point{X: 296, Y: 35}},
		AttrStroke:      "rgb(171,71,188)",
		AttrStrokeWidth: 3.0,
		AttrMarkerEnd:   marker.ID(),
		AttrClass:       "flow",
	})
	sparks := d.Group(nil, "sparks")
	d.Shape(sparks, KindCircle, Attrs{AttrCX: 200.0, AttrCY: 35.0, AttrRadius: 4.0, AttrFill: "rgb(201,101,218)"})
	return d, g
}

func TestDocumentTree(t *testing.T) {
	d, g := sampleDocument()

	n, ok := d.Lookup(g.ID())
	require.True(t, ok)
	assert.Equal(t, KindGroup, n.Kind())
	assert.True(t, n.HasClass("block"))
	require.Len(t, n.Children, 2)
	assert.Equal(t, n, n.Children[0].Parent())

	d.SetAttr(g, AttrClass, "block dragging")
	assert.True(t, n.HasClass("dragging"))

	text := n.Children[1]
	d.SetText(text, []string{"one"})
	assert.Equal(t, []string{"one"}, text.Lines)

	var kinds []Kind
	d.Walk(func(n *Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != KindGroup || !n.HasClass("block")
	})
	assert.NotContains(t, kinds, KindRect, "children of a pruned group must not be visited")
}

func TestDocumentClear(t *testing.T) {
	d, g := sampleDocument()
	before := d.Len()

	d.Clear(g)
	n, _ := d.Lookup(g.ID())
	assert.Empty(t, n.Children)
	assert.Equal(t, before-2, d.Len())
}

func TestCaptureRelease(t *testing.T) {
	d, g := sampleDocument()

	d.Capture(g, 7)
	n, ok := d.Captured(7)
	require.True(t, ok)
	assert.Equal(t, g.ID(), n.ID())

	other := d.Group(nil, "other")
	d.Release(other, 7)
	_, ok = d.Captured(7)
	assert.True(t, ok, "releasing through another element keeps the capture")

	d.Release(g, 7)
	_, ok = d.Captured(7)
	assert.False(t, ok)
}

func TestClearDropsCaptures(t *testing.T) {
	d, g := sampleDocument()
	inner := d.Group(g, "inner")
	d.Capture(inner, 3)
	d.Capture(g, 4)

	d.Clear(g)
	_, ok := d.Captured(3)
	assert.False(t, ok, "a cleared element holds no pointer")
	n, ok := d.Captured(4)
	require.True(t, ok)
	assert.Equal(t, g.ID(), n.ID())
}

func TestTransformRoundTrip(t *testing.T) {
	tr := FitTransform(1000, 720, 200, 50, CellAspect)
	p := geometry.Point{X: 123, Y: 456}
	back := tr.Invert(tr.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)

	panned := tr.Pan(5, -2)
	assert.Equal(t, tr.OffsetX+5, panned.OffsetX)
	assert.Equal(t, tr.OffsetY-2, panned.OffsetY)

	assert.Equal(t, geometry.Point{}, Transform{}.Invert(p))
}

func TestFitTransformMeet(t *testing.T) {
	tr := FitTransform(100, 100, 400, 200, 1)
	assert.Equal(t, 2.0, tr.ScaleX)
	assert.Equal(t, 2.0, tr.ScaleY)
	assert.Equal(t, 100.0, tr.OffsetX)
	assert.Equal(t, 0.0, tr.OffsetY)

	assert.Equal(t, Identity(), FitTransform(0, 100, 10, 10, 1))
}

func TestViewportDrivesToLocal(t *testing.T) {
	d := NewDocument(100, 100)
	assert.Equal(t, geometry.Point{X: 5, Y: 5}, d.ToLocal(geometry.Point{X: 5, Y: 5}))

	d.SetViewport(Transform{ScaleX: 2, ScaleY: 2, OffsetX: 10})
	assert.Equal(t, geometry.Point{X: 20, Y: 25}, d.ToLocal(geometry.Point{X: 50, Y: 50}))
}

func TestWriteSVG(t *testing.T) {
	d, _ := sampleDocument()
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, d, DefaultTheme))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, `viewBox="0 0 400 200"`)
	assert.Contains(t, out, `<path d="M 114 35 C 180 35, 220 35, 296 35"`)
	assert.Contains(t, out, `marker-end="url(#marker-`)
	assert.Contains(t, out, `class="flow"`)
	assert.Contains(t, out, `<tspan x="60" dy="18">Cortex &lt;A&amp;B&gt;</tspan>`)
	assert.Contains(t, out, `<circle cx="200" cy="35" r="4" fill="rgb(201,101,218)"/>`)
	assert.Contains(t, out, `<pattern id="grid-`)
}

func TestSaveSVGAndPNG(t *testing.T) {
	d, _ := sampleDocument()
	dir := t.TempDir()

	svgPath := filepath.Join(dir, "out.svg")
	require.NoError(t, SaveSVG(svgPath, d, DefaultTheme))
	info, err := os.Stat(svgPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	img, err := RenderPNG(d, 400, 200, DefaultTheme)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())

	// The spark is drawn on top of the stroke in its own color.
	r, g, b, _ := img.At(200, 35).RGBA()
	assert.Equal(t, uint32(201), r>>8)
	assert.Equal(t, uint32(101), g>>8)
	assert.Equal(t, uint32(218), b>>8)

	pngPath := filepath.Join(dir, "out.png")
	require.NoError(t, SavePNG(pngPath, d, 200, 100, DefaultTheme))
	_, err = os.Stat(pngPath)
	require.NoError(t, err)

	_, err = RenderPNG(d, 0, 10, DefaultTheme)
	assert.Error(t, err)
}

func TestRenderTerminal(t *testing.T) {
	d, _ := sampleDocument()
	d.SetViewport(FitTransform(d.Width, d.Height, 80, 20, CellAspect))

	lines := Plain(RenderTerminal(d, 80, 20, DefaultTheme))
	require.Len(t, lines, 20)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "╭")
	assert.Contains(t, joined, "Motor")
	assert.Contains(t, joined, "●")
	assert.Contains(t, joined, "▶")
}

func TestLineRunes(t *testing.T) {
	assert.Equal(t, '─', lineRune(geometry.Point{X: 1}))
	assert.Equal(t, '│', lineRune(geometry.Point{Y: 1}))
	assert.Equal(t, '╲', lineRune(geometry.Point{X: 1, Y: 0.5}))
	assert.Equal(t, '╱', lineRune(geometry.Point{X: 1, Y: -0.5}))
	assert.Equal(t, '◀', arrowRune(geometry.Point{X: -3, Y: 1}))
	assert.Equal(t, '▲', arrowRune(geometry.Point{X: 0, Y: -1}))
}
