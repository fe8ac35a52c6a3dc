package main

import "time"

const (
	rcFile = ".flowsparkrc"

	defaultFPS = 60.0

	panStep = 2.0

	statusTTL = 3 * time.Second

	// Pixel size of PNG exports.
	pngWidth  = 1600
	pngHeight = 1152
)

type exportKind int

const (
	exportPNG exportKind = iota
	exportSVG
	exportTXT
)

func (k exportKind) ext() string {
	switch k {
	case exportSVG:
		return ".svg"
	case exportTXT:
		return ".txt"
	default:
		return ".png"
	}
}
