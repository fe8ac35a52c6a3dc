package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"flowspark/diagram"
	"flowspark/metrics"
	"flowspark/scene"
	"flowspark/surface"
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

// demoScene is shown when no scene file is given.
const demoScene = `{
  "blocks": [
    {"id": "ctx", "x": 60, "y": 80, "w": 180, "h": 70, "label": "Motor<br>Cortex"},
    {"id": "bg", "x": 420, "y": 60, "w": 160, "h": 60, "label": "Basal ganglia"},
    {"id": "thal", "x": 420, "y": 300, "w": 160, "h": 60, "label": "Thalamus"},
    {"id": "cb", "x": 760, "y": 180, "w": 170, "h": 60, "label": "Cerebellum"},
    {"id": "sc", "x": 60, "y": 520, "w": 180, "h": 70, "label": "Spinal\ncord"},
    {"id": "tip", "x": 720, "y": 560, "w": 230, "h": 60, "label": "drag blocks with the mouse", "note": true}
  ],
  "connections": [
    {"from": "ctx", "to": "bg", "color": "motor", "sparks": 3},
    {"from": "bg", "to": "thal", "start_edge": "bottom", "end_edge": "top", "color": "basal", "sparks": 2},
    {"from": "thal", "to": "ctx", "start_edge": "left", "end_edge": "bottom", "color": "thal", "sparks": 3},
    {"from": "bg", "to": "cb", "color": "cereb", "emitter": true, "sparks": 4, "max_live": 6},
    {"from": "cb", "to": "thal", "start_edge": "bottom", "end_edge": "right", "color": "cereb", "sparks": 2},
    {"from": "ctx", "to": "sc", "start_edge": "bottom", "end_edge": "top", "color": "motor2", "width": 4, "sparks": 4, "spark_speed": 1.2}
  ]
}`

type options struct {
	scenePath  string
	savePrefix string
	frameSkip  int
	startIndex int
	maxFrames  int
	svgPath    string
	pngPath    string
	headless   bool
	lenient    bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

// parseFlags reads command-line flags on top of the rc file settings in
// config. A bare argument is taken as the scene path.
func parseFlags(args []string, config *Config) (*options, error) {
	fs := flag.NewFlagSet("flowspark", flag.ContinueOnError)
	opts := &options{}

	fs.StringVar(&opts.scenePath, "scene", "", "JSON or YAML scene file")
	fs.StringVar(&opts.savePrefix, "save-prefix", "", "write frames to PREFIX000001.png... and exit")
	fs.IntVar(&opts.frameSkip, "frame-skip", 1, "save every Nth frame")
	fs.IntVar(&opts.startIndex, "start-index", 1, "index of the first saved frame")
	fs.IntVar(&opts.maxFrames, "max-frames", 0, "stop after N saved frames (0 = until interrupted)")
	fs.StringVar(&opts.svgPath, "svg", "", "write an SVG snapshot and exit")
	fs.StringVar(&opts.pngPath, "png", "", "write a PNG snapshot and exit")
	fs.BoolVar(&opts.headless, "headless", false, "animate without a terminal UI (with -metrics-addr)")
	fs.BoolVar(&opts.lenient, "lenient", false, "skip bad scene entries instead of failing")

	fs.Float64Var(&config.FPS, "fps", config.FPS, "frames per second")
	fs.BoolVar(&config.Emitter, "random-spark-starts", config.Emitter, "emit sparks at random instead of fixed phases")
	fs.Float64Var(&config.EmitMult, "emit-mult", config.EmitMult, "multiply every connection's emission rate")
	fs.IntVar(&config.MaxLive, "max-live-sparks", config.MaxLive, "cap live sparks per connection where none is set")
	fs.BoolVar(&config.Grid, "grid", config.Grid, "draw the background grid")
	fs.BoolVar(&config.Debug, "debug", config.Debug, "show block coordinates while dragging")
	fs.TextVar(&config.LogLevel, "log-level", config.LogLevel, "debug, info, warn or error")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", config.MetricsAddr, "serve Prometheus metrics on this address")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.scenePath == "" && fs.NArg() > 0 {
		opts.scenePath = fs.Arg(0)
	}
	if config.FPS <= 0 {
		return nil, fmt.Errorf("invalid -fps %v", config.FPS)
	}
	return opts, nil
}

// overrides turns the global spark settings into scene overrides. Settings
// left at their defaults do not override anything.
func (c *Config) overrides() scene.Overrides {
	var o scene.Overrides
	if c.Emitter {
		on := true
		o.Emitter = &on
	}
	if c.EmitMult != 1 {
		mult := c.EmitMult
		o.EmitMult = &mult
	}
	if c.MaxLive > 0 {
		limit := c.MaxLive
		o.MaxLive = &limit
	}
	return o
}

func (c *Config) diagramConfig() diagram.Config {
	cfg := diagram.DefaultConfig()
	cfg.Grid = c.Grid
	cfg.Debug = c.Debug
	return cfg
}

func (o *options) interactive() bool {
	return o.savePrefix == "" && o.svgPath == "" && o.pngPath == "" && !o.headless
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(args []string) error {
	config := loadConfig()
	opts, err := parseFlags(args, config)
	if err != nil {
		return err
	}

	// The alt screen owns stdout, so the TUI logs to a file.
	var logOut io.Writer = os.Stderr
	if opts.interactive() {
		f, err := tea.LogToFile(config.GetSavePath("flowspark.log"), "flowspark")
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut, config.LogLevel)

	reg := metrics.NewRegistry()
	if config.MetricsAddr != "" {
		srv := serveMetrics(config.MetricsAddr, reg, logger)
		defer srv.Close()
	}

	d, doc, err := launch(config, opts, logger, reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.savePrefix != "":
		n, err := exportFrames(ctx, d, doc, frameOptions{
			Prefix:     opts.savePrefix,
			FrameSkip:  opts.frameSkip,
			StartIndex: opts.startIndex,
			MaxFrames:  opts.maxFrames,
			FPS:        config.FPS,
		}, surface.DefaultTheme)
		logger.Info("frames exported", "count", n, "prefix", opts.savePrefix)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case opts.svgPath != "" || opts.pngPath != "":
		return snapshot(d, doc, opts)
	case opts.headless:
		return runHeadless(ctx, d, config.FPS)
	}

	p := tea.NewProgram(
		initialModel(config, doc, d, exportBase(opts.scenePath)),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return err
}

// launch builds the document and diagram and starts animation. Without a
// scene path the demo scene is loaded.
func launch(config *Config, opts *options, logger *slog.Logger, reg *metrics.Registry) (*diagram.Diagram, *surface.Document, error) {
	cfg := config.diagramConfig()
	doc := surface.NewDocument(cfg.Width, cfg.Height)

	lo := diagram.LaunchOptions{
		Path:      opts.scenePath,
		Overrides: config.overrides(),
		Lenient:   opts.lenient,
	}
	if opts.scenePath == "" {
		lo.JSON = []byte(demoScene)
	}
	d, err := diagram.Launch(doc, cfg, lo, diagram.WithLogger(logger), diagram.WithMetrics(reg))
	if err != nil {
		return nil, nil, err
	}
	return d, doc, nil
}

// snapshot draws the scene at time zero and writes the requested files.
func snapshot(d *diagram.Diagram, doc *surface.Document, opts *options) error {
	d.Tick(0, 0)
	if opts.svgPath != "" {
		if err := surface.SaveSVG(opts.svgPath, doc, surface.DefaultTheme); err != nil {
			return err
		}
	}
	if opts.pngPath != "" {
		if err := surface.SavePNG(opts.pngPath, doc, pngWidth, pngHeight, surface.DefaultTheme); err != nil {
			return err
		}
	}
	return nil
}

func runHeadless(ctx context.Context, d *diagram.Diagram, fps float64) error {
	ticker := time.NewTicker(frameInterval(fps))
	defer ticker.Stop()
	if err := d.Run(ctx, ticker.C, nil); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveMetrics(addr string, reg *metrics.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}

func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = defaultFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

func initialModel(config *Config, doc *surface.Document, d *diagram.Diagram, filename string) model {
	return model{
		config:   config,
		doc:      doc,
		diagram:  d,
		theme:    surface.DefaultTheme,
		keys:     keys,
		help:     help.New(),
		filename: filename,
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(frameInterval(m.config.FPS), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return m.tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.applyViewport()
		return m, nil

	case tickMsg:
		// Keep ticking while paused so resuming needs no restart.
		m.diagram.Frame()
		return m, m.tick()

	case clearStatusMsg:
		if time.Time(msg).Equal(m.statusAt) {
			m.statusMessage = ""
			m.errorMessage = ""
		}
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleMouse turns terminal mouse reports into pointer events. The left
// button drags; the wheel pans.
func (m *model) handleMouse(msg tea.MouseMsg) {
	at := cellCenter(msg.X, msg.Y)
	ev := diagram.PointerEvent{X: at.X, Y: at.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			ev.Kind = diagram.PointerDown
			m.dragging = true
		case tea.MouseButtonWheelUp:
			m.handlePan("k", 1)
			return
		case tea.MouseButtonWheelDown:
			m.handlePan("j", 1)
			return
		default:
			return
		}
	case tea.MouseActionMotion:
		if !m.dragging {
			return
		}
		ev.Kind = diagram.PointerMove
	case tea.MouseActionRelease:
		if !m.dragging {
			return
		}
		ev.Kind = diagram.PointerUp
		m.dragging = false
	default:
		return
	}
	m.diagram.HandlePointer(ev)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.applyViewport()

	case key.Matches(msg, m.keys.Toggle):
		if m.diagram.Running() {
			m.diagram.Stop()
			return m, m.setStatus("paused")
		}
		m.diagram.Start()
		return m, m.setStatus("running")

	case key.Matches(msg, m.keys.Refresh):
		m.diagram.Update()
		return m, m.setStatus("paths refreshed")

	case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right):
		m.handlePan(k, m.getMoveSpeed(k))

	case key.Matches(msg, m.keys.Recenter):
		m.recenter()

	case key.Matches(msg, m.keys.ExportPNG):
		return m, m.exportStatus(exportPNG)
	case key.Matches(msg, m.keys.ExportSVG):
		return m, m.exportStatus(exportSVG)
	case key.Matches(msg, m.keys.ExportTXT):
		return m, m.exportStatus(exportTXT)

	case key.Matches(msg, m.keys.Copy):
		if err := m.copyScene(); err != nil {
			return m, m.setError(fmt.Sprintf("Error copying scene: %s", err.Error()))
		}
		return m, m.setStatus("scene copied to clipboard")
	}
	return m, nil
}

func (m *model) exportStatus(kind exportKind) tea.Cmd {
	path, err := m.export(kind)
	if err != nil {
		return m.setError(fmt.Sprintf("Error exporting: %s", err.Error()))
	}
	return m.setStatus("saved " + path)
}

func (m *model) setStatus(text string) tea.Cmd {
	m.statusMessage = text
	m.errorMessage = ""
	return m.expireStatus()
}

func (m *model) setError(text string) tea.Cmd {
	m.errorMessage = text
	m.statusMessage = ""
	return m.expireStatus()
}

func (m *model) expireStatus() tea.Cmd {
	m.statusAt = time.Now()
	at := m.statusAt
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg(at)
	})
}

func (m model) statusLine() string {
	state := statusStyle.Render("running")
	if !m.diagram.Running() {
		state = pausedStyle.Render("paused")
	}
	line := fmt.Sprintf(" %s %s", state, statusStyle.Render(fmt.Sprintf("t=%.1fs  blocks=%d  connections=%d",
		m.diagram.Elapsed(), len(m.diagram.Blocks()), len(m.diagram.Connections()))))

	switch {
	case m.errorMessage != "":
		line += "  " + errorStyle.Render(m.errorMessage)
	case m.statusMessage != "":
		line += "  " + successStyle.Render(m.statusMessage)
	}
	return line
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	var b strings.Builder
	lines := surface.RenderTerminal(m.doc, m.canvasCols(), m.canvasRows(), m.theme)
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
