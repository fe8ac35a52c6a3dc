package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"flowspark/diagram"
	"flowspark/surface"
)

type frameOptions struct {
	Prefix     string
	FrameSkip  int
	StartIndex int
	MaxFrames  int
	FPS        float64
	Width      int
	Height     int
}

// exportFrames steps the diagram at a fixed 1/FPS and writes every
// FrameSkip-th frame to PREFIX%06d.png. It stops after MaxFrames files, or
// when ctx is done if MaxFrames is 0. It returns the number of files written.
func exportFrames(ctx context.Context, d *diagram.Diagram, doc *surface.Document, opts frameOptions, theme surface.Theme) (int, error) {
	if opts.FrameSkip < 1 {
		opts.FrameSkip = 1
	}
	if opts.StartIndex < 0 {
		opts.StartIndex = 0
	}
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = pngWidth, pngHeight
	}
	if dir := filepath.Dir(opts.Prefix); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, err
		}
	}

	dt := 1 / opts.FPS
	elapsed := 0.0
	index := opts.StartIndex
	saved := 0
	for frame := 1; ; frame++ {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		elapsed += dt
		d.Tick(dt, elapsed)
		if frame%opts.FrameSkip != 0 {
			continue
		}
		path := fmt.Sprintf("%s%06d.png", opts.Prefix, index)
		if err := surface.SavePNG(path, doc, opts.Width, opts.Height, theme); err != nil {
			return saved, fmt.Errorf("frame %d: %w", index, err)
		}
		index++
		saved++
		if opts.MaxFrames > 0 && saved >= opts.MaxFrames {
			return saved, nil
		}
	}
}

func (m *model) exportVisualTXT(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	// Render exactly what is on screen, without color.
	rendered := surface.Plain(surface.RenderTerminal(m.doc, m.canvasCols(), m.canvasRows(), m.theme))
	for _, line := range rendered {
		fmt.Fprintln(file, line)
	}
	return nil
}

// export writes the current frame in the given format and returns the path.
func (m *model) export(kind exportKind) (string, error) {
	path := m.config.GetSavePath(m.filename + kind.ext())
	var err error
	switch kind {
	case exportSVG:
		err = surface.SaveSVG(path, m.doc, m.theme)
	case exportTXT:
		err = m.exportVisualTXT(path)
	default:
		err = surface.SavePNG(path, m.doc, pngWidth, pngHeight, m.theme)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
