package main

import (
	"time"

	"github.com/charmbracelet/bubbles/help"

	"flowspark/diagram"
	"flowspark/surface"
)

type model struct {
	config  *Config
	doc     *surface.Document
	diagram *diagram.Diagram
	theme   surface.Theme

	keys keyMap
	help help.Model

	width  int
	height int
	panX   float64
	panY   float64

	// Left button held down.
	dragging bool

	// Base name for exports, without extension.
	filename string

	statusMessage string
	errorMessage  string
	statusAt      time.Time
}

type tickMsg time.Time

// clearStatusMsg expires the status line set at the given time.
type clearStatusMsg time.Time
