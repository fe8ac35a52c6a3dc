package surface

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"flowspark/geometry"
	"flowspark/palette"
)

var (
	fontOnce sync.Once
	ttf      *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		ttf, fontErr = truetype.Parse(goregular.TTF)
	})
	return ttf, fontErr
}

func rgba(c palette.RGB) color.Color {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// rasterizer draws a Document through a fixed scene-to-pixel transform.
type rasterizer struct {
	dc    *gg.Context
	doc   *Document
	view  Transform
	theme Theme
	font  *truetype.Font
}

func (r *rasterizer) pt(p geometry.Point) geometry.Point { return r.view.Apply(p) }

func (r *rasterizer) scale() float64 { return r.view.ScaleX }

// RenderPNG rasterizes the whole viewBox of d into a width x height image.
func RenderPNG(d *Document, width, height int, theme Theme) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	f, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}

	r := &rasterizer{
		dc:    gg.NewContext(width, height),
		doc:   d,
		view:  FitTransform(d.Width, d.Height, float64(width), float64(height), 1),
		theme: theme,
		font:  f,
	}
	r.dc.SetColor(rgba(theme.Background))
	r.dc.Clear()

	for _, c := range d.Root.Children {
		r.draw(c)
	}
	return r.dc.Image(), nil
}

// SavePNG renders d and writes it to path.
func SavePNG(path string, d *Document, width, height int, theme Theme) error {
	img, err := RenderPNG(d, width, height, theme)
	if err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}

func (r *rasterizer) face(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func (r *rasterizer) draw(n *Node) {
	if n.Bool(AttrHidden) {
		return
	}
	switch n.Kind() {
	case KindGroup:
		for _, c := range n.Children {
			r.draw(c)
		}
	case KindGrid:
		r.drawGrid(n.Num(AttrSpacing))
	case KindRect:
		r.drawRect(n)
	case KindText:
		r.drawText(n)
	case KindPath:
		r.drawPath(n)
	case KindCircle:
		c := r.pt(geometry.Point{X: n.Num(AttrCX), Y: n.Num(AttrCY)})
		r.dc.SetColor(rgba(palette.MustParse(n.Str(AttrFill))))
		r.dc.DrawCircle(c.X, c.Y, n.Num(AttrRadius)*r.scale())
		r.dc.Fill()
	}
}

func (r *rasterizer) drawGrid(gap float64) {
	if gap <= 0 {
		return
	}
	r.dc.SetColor(rgba(r.theme.Grid))
	r.dc.SetLineWidth(1)
	for x := 0.0; x <= r.doc.Width; x += gap {
		a, b := r.pt(geometry.Point{X: x}), r.pt(geometry.Point{X: x, Y: r.doc.Height})
		r.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	}
	for y := 0.0; y <= r.doc.Height; y += gap {
		a, b := r.pt(geometry.Point{Y: y}), r.pt(geometry.Point{X: r.doc.Width, Y: y})
		r.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	}
	r.dc.Stroke()
}

func (r *rasterizer) drawRect(n *Node) {
	s := r.scale()
	p := r.pt(geometry.Point{X: n.Num(AttrX), Y: n.Num(AttrY)})
	w, h := n.Num(AttrWidth)*s, n.Num(AttrHeight)*s
	radius := n.Num(AttrCorner) * s

	fill := r.theme.BlockFill
	border := r.theme.BlockBorder
	if g := n.Parent(); g != nil {
		if g.HasClass("note") {
			fill = r.theme.NoteFill
		}
		if g.HasClass("dragging") {
			border = r.theme.Text
		}
	}
	r.dc.DrawRoundedRectangle(p.X, p.Y, w, h, radius)
	r.dc.SetColor(rgba(fill))
	r.dc.FillPreserve()
	r.dc.SetColor(rgba(border))
	r.dc.SetLineWidth(math.Max(1, 2*s))
	r.dc.Stroke()
}

func (r *rasterizer) drawText(n *Node) {
	s := r.scale()
	r.dc.SetFontFace(r.face(math.Max(6, 16*s)))
	fg := r.theme.Text
	if f := n.Str(AttrFill); f != "" {
		fg = palette.MustParse(f)
	}
	r.dc.SetColor(rgba(fg))

	ax := 0.5
	if n.Str(AttrAnchor) == "end" {
		ax = 1
	}
	lh := n.Num(AttrLineHeight)
	for i, line := range n.Lines {
		p := r.pt(geometry.Point{X: n.Num(AttrX), Y: n.Num(AttrY) + float64(i)*lh})
		r.dc.DrawStringAnchored(line, p.X, p.Y, ax, 0)
	}
}

func (r *rasterizer) drawPath(n *Node) {
	c, ok := n.Curve()
	if !ok {
		return
	}
	s := r.scale()
	width := n.Num(AttrStrokeWidth) * s
	dev := geometry.Cubic{P0: r.pt(c.P0), C1: r.pt(c.C1), C2: r.pt(c.C2), P3: r.pt(c.P3)}

	stroke := func(col palette.RGB, w float64) {
		r.dc.MoveTo(dev.P0.X, dev.P0.Y)
		r.dc.CubicTo(dev.C1.X, dev.C1.Y, dev.C2.X, dev.C2.Y, dev.P3.X, dev.P3.Y)
		r.dc.SetColor(rgba(col))
		r.dc.SetLineWidth(math.Max(1, w))
		r.dc.Stroke()
	}
	col := strokeColor(n)
	stroke(r.theme.Shadow, width+2*s)
	stroke(col, width)

	if n.Str(AttrMarkerEnd) == "" {
		return
	}
	if tip, left, right, ok := arrowHead(dev, arrowHeadLen*s); ok {
		r.dc.MoveTo(tip.X, tip.Y)
		r.dc.LineTo(left.X, left.Y)
		r.dc.LineTo(right.X, right.Y)
		r.dc.ClosePath()
		r.dc.SetColor(rgba(col))
		r.dc.Fill()
	}
}
