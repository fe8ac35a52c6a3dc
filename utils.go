package main

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	"flowspark/diagram"
	"flowspark/scene"
)

// sceneJSON encodes the diagram as a scene file, with blocks where they
// are now.
func sceneJSON(d *diagram.Diagram) (string, error) {
	var buf bytes.Buffer
	if err := scene.Encode(&buf, d.Snapshot()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeClipboardText(text string) error {
	if runtime.GOOS == "darwin" {
		cmd := exec.Command("pbcopy")
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	return clipboard.WriteAll(text)
}

// copyScene puts the current scene on the clipboard.
func (m *model) copyScene() error {
	text, err := sceneJSON(m.diagram)
	if err != nil {
		return err
	}
	return writeClipboardText(text)
}

// exportBase derives an export file name from a scene path.
func exportBase(scenePath string) string {
	if scenePath == "" {
		return "flowspark"
	}
	base := filepath.Base(scenePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
