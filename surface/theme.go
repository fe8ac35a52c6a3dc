package surface

import "flowspark/palette"

// Theme holds the colors rasterizers use for everything the engine does not
// color explicitly.
type Theme struct {
	Background  palette.RGB
	Grid        palette.RGB
	BlockFill   palette.RGB
	BlockBorder palette.RGB
	NoteFill    palette.RGB
	Text        palette.RGB
	Shadow      palette.RGB
	Debug       palette.RGB
}

var DefaultTheme = Theme{
	Background:  palette.RGB{R: 22, G: 26, B: 30},
	Grid:        palette.RGB{R: 36, G: 40, B: 45},
	BlockFill:   palette.RGB{R: 43, G: 48, B: 54},
	BlockBorder: palette.RGB{R: 90, G: 100, B: 110},
	NoteFill:    palette.RGB{R: 60, G: 56, B: 40},
	Text:        palette.RGB{R: 235, G: 240, B: 245},
	Shadow:      palette.RGB{R: 0, G: 0, B: 0},
	Debug:       palette.RGB{R: 255, G: 107, B: 107},
}

const (
	arrowHeadLen   = 14.0
	arrowHeadAngle = 25.0 // degrees
)

// strokeColor resolves a node's stroke attribute, falling back to the
// default arrow color.
func strokeColor(n *Node) palette.RGB {
	return palette.MustParse(n.Str(AttrStroke))
}
