package surface

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteSVG serializes the document as a standalone SVG image.
func WriteSVG(w io.Writer, d *Document, theme Theme) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" id="%s" viewBox="0 0 %g %g" preserveAspectRatio="xMidYMid meet" width="100%%" height="100%%">`+"\n",
		d.Root.ID(), d.Width, d.Height)
	fmt.Fprintf(&buf, `<style>
  .block rect { fill: %s; stroke: %s; stroke-width: 2; }
  .block.note rect { fill: %s; }
  .block.dragging rect { stroke: %s; }
  text { fill: %s; font-family: sans-serif; font-size: 16px; }
</style>
`, theme.BlockFill.CSS(), theme.BlockBorder.CSS(), theme.NoteFill.CSS(), theme.Text.CSS(), theme.Text.CSS())
	fmt.Fprintf(&buf, `<rect x="0" y="0" width="%g" height="%g" fill="%s"/>`+"\n", d.Width, d.Height, theme.Background.CSS())

	// Markers and grid patterns must be declared before use.
	buf.WriteString("<defs>\n")
	d.Walk(func(n *Node) bool {
		switch n.Kind() {
		case KindMarker:
			fmt.Fprintf(&buf, `<marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="5" markerHeight="5" orient="auto-start-reverse"><polygon points="0,0 10,5 0,10" fill="context-stroke"/></marker>`+"\n", n.ID())
		case KindGrid:
			gap := n.Num(AttrSpacing)
			fmt.Fprintf(&buf, `<pattern id="%s" width="%g" height="%g" patternUnits="userSpaceOnUse"><path d="M%g 0H0V%g" fill="none" stroke="%s" stroke-width="1"/></pattern>`+"\n",
				n.ID(), gap, gap, gap, gap, theme.Grid.CSS())
		}
		return true
	})
	buf.WriteString("</defs>\n")

	for _, c := range d.Root.Children {
		writeNode(&buf, d, c, theme)
	}
	buf.WriteString("</svg>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// SaveSVG writes the document to path.
func SaveSVG(path string, d *Document, theme Theme) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteSVG(f, d, theme)
}

func writeNode(buf *bytes.Buffer, d *Document, n *Node, theme Theme) {
	if n.Bool(AttrHidden) {
		return
	}
	switch n.Kind() {
	case KindGroup:
		fmt.Fprintf(buf, `<g%s>`+"\n", classAttr(n))
		for _, c := range n.Children {
			writeNode(buf, d, c, theme)
		}
		buf.WriteString("</g>\n")
	case KindGrid:
		fmt.Fprintf(buf, `<rect x="-500" y="-500" width="2000" height="2000" fill="url(#%s)"/>`+"\n", n.ID())
	case KindRect:
		fmt.Fprintf(buf, `<rect x="%g" y="%g" width="%g" height="%g" rx="%g" ry="%g"%s/>`+"\n",
			n.Num(AttrX), n.Num(AttrY), n.Num(AttrWidth), n.Num(AttrHeight), n.Num(AttrCorner), n.Num(AttrCorner), classAttr(n))
	case KindText:
		writeText(buf, n)
	case KindPath:
		c, ok := n.Curve()
		if !ok {
			return
		}
		fmt.Fprintf(buf, `<path d="M %g %g C %g %g, %g %g, %g %g" fill="none" stroke-width="%g"`,
			c.P0.X, c.P0.Y, c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.P3.X, c.P3.Y, n.Num(AttrStrokeWidth))
		stroke := n.Str(AttrStroke)
		if stroke == "" {
			stroke = strokeColor(n).CSS()
		}
		fmt.Fprintf(buf, ` stroke="%s"`, escape(stroke))
		if m := n.Str(AttrMarkerEnd); m != "" {
			if _, ok := d.Lookup(m); ok {
				fmt.Fprintf(buf, ` marker-end="url(#%s)"`, m)
			}
		}
		buf.WriteString(classAttr(n) + "/>\n")
	case KindCircle:
		fmt.Fprintf(buf, `<circle cx="%g" cy="%g" r="%g" fill="%s"/>`+"\n",
			n.Num(AttrCX), n.Num(AttrCY), n.Num(AttrRadius), escape(n.Str(AttrFill)))
	}
}

func writeText(buf *bytes.Buffer, n *Node) {
	anchor := n.Str(AttrAnchor)
	if anchor == "" {
		anchor = "middle"
	}
	x, y := n.Num(AttrX), n.Num(AttrY)
	lh := n.Num(AttrLineHeight)
	fmt.Fprintf(buf, `<text x="%g" y="%g" text-anchor="%s"`, x, y, anchor)
	if fill := n.Str(AttrFill); fill != "" {
		fmt.Fprintf(buf, ` style="fill:%s"`, escape(fill))
	}
	buf.WriteString(">")
	for i, line := range n.Lines {
		if i == 0 {
			fmt.Fprintf(buf, `<tspan x="%g">%s</tspan>`, x, escape(line))
			continue
		}
		fmt.Fprintf(buf, `<tspan x="%g" dy="%g">%s</tspan>`, x, lh, escape(line))
	}
	buf.WriteString("</text>\n")
}

func classAttr(n *Node) string {
	if n.Class == "" {
		return ""
	}
	return ` class="` + escape(n.Class) + `"`
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
