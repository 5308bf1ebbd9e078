package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kcirtapfromspace/chordmap/pkg/graph"
	"github.com/kcirtapfromspace/chordmap/pkg/layout"
	"github.com/kcirtapfromspace/chordmap/pkg/pipeline"
)

// watchCommand creates the watch command: an interactive terminal view that
// advances the simulation on a timer, one tick per frame.
func (c *CLI) watchCommand() *cobra.Command {
	var intervalMS int
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "watch [snapshot.json]",
		Short: "Watch a layout settle live in the terminal",
		Long: `Watch a layout settle live in the terminal.

Each frame advances the simulation by one tick on a fixed-period timer, so
you can see repulsion spread the nodes, edges pull collaborators together,
and damping bring the whole graph to rest. Press q to stop early.

Unlike the layout command, watch seeds positions from the clock by default,
so every run starts from a different arrangement; pass --seed for a
reproducible one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(args[0], opts, time.Duration(intervalMS)*time.Millisecond)
		},
	}

	cmd.Flags().IntVar(&intervalMS, "interval", int(layout.DefaultInterval/time.Millisecond), "tick period in milliseconds")
	c.layoutFlags(cmd, &opts)

	return cmd
}

// runWatch loads the snapshot and hands it to the bubbletea program.
func (c *CLI) runWatch(input string, opts pipeline.Options, interval time.Duration) error {
	snap, err := graph.ReadSnapshotFile(input)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", input, err)
	}

	if opts.Width == 0 {
		opts.Width = pipeline.DefaultWidth
	}
	if opts.Height == 0 {
		opts.Height = pipeline.DefaultHeight
	}

	sim := pipeline.NewSimulator(opts)
	sim.Seed(snap, opts.Width, opts.Height)

	m := newWatchModel(sim, snap, opts.Width, opts.Height, interval)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// =============================================================================
// WatchModel - Live Simulation View
// =============================================================================

// tickMsg is the timer message that drives one simulation tick per frame.
type tickMsg time.Time

// watchModel is the bubbletea model for the live simulation view.
type watchModel struct {
	sim      *layout.Simulator
	interval time.Duration

	// Viewport the simulation runs in (canvas units).
	width  float64
	height float64

	// Node kind and flag lookups for glyph rendering.
	kinds   map[string]string
	flagged map[string]bool

	// Terminal size.
	termW int
	termH int

	finished bool
}

// newWatchModel builds the model for one run.
func newWatchModel(sim *layout.Simulator, snap graph.Snapshot, width, height float64, interval time.Duration) watchModel {
	kinds := make(map[string]string, len(snap.Nodes))
	flagged := make(map[string]bool)
	for _, n := range snap.Nodes {
		kinds[n.ID] = n.Kind
		if n.Flagged {
			flagged[n.ID] = true
		}
	}
	return watchModel{
		sim:      sim,
		interval: interval,
		width:    width,
		height:   height,
		kinds:    kinds,
		flagged:  flagged,
		termW:    80,
		termH:    24,
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.tick()
}

// tick schedules the next simulation step on the fixed-period timer.
func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.sim.Cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.termW = msg.Width
		m.termH = msg.Height
	case tickMsg:
		m.finished = m.sim.Step()
		if !m.finished {
			return m, m.tick()
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Chordmap"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  tick %d · %d nodes · %d edges · energy %.1f",
		m.sim.Tick(), m.sim.NodeCount(), m.sim.EdgeCount(), m.sim.Energy())))
	b.WriteString("\n")
	if m.finished {
		b.WriteString(StyleSuccess.Render("settled") + StyleDim.Render("  q quit"))
	} else {
		b.WriteString(StyleDim.Render("settling...  q quit"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderCanvas())

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("  " +
		styleArtist.Render("●") + " artist  " +
		styleLabel.Render("■") + " label  " +
		styleTrack.Render("·") + " track  " +
		styleFlagged.Render("●") + " flagged"))

	return b.String()
}

// renderCanvas projects canvas-unit positions onto a character grid.
func (m watchModel) renderCanvas() string {
	cols := m.termW - 2
	rows := m.termH - 6
	if cols < 10 {
		cols = 10
	}
	if rows < 5 {
		rows = 5
	}

	type cell struct {
		glyph   string
		kind    string
		flagged bool
	}
	grid := make(map[[2]int]cell)

	for _, p := range m.sim.Positions() {
		col := int(p.X / m.width * float64(cols-1))
		row := int(p.Y / m.height * float64(rows-1))
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		glyph := "·"
		kind := m.kinds[p.ID]
		switch kind {
		case graph.KindArtist:
			glyph = "●"
		case graph.KindLabel:
			glyph = "■"
		}
		grid[[2]int{row, col}] = cell{glyph: glyph, kind: kind, flagged: m.flagged[p.ID]}
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		b.WriteString(" ")
		for col := 0; col < cols; col++ {
			c, ok := grid[[2]int{r, col}]
			if !ok {
				b.WriteString(" ")
				continue
			}
			switch {
			case c.flagged:
				b.WriteString(styleFlagged.Render(c.glyph))
			case c.kind == graph.KindArtist:
				b.WriteString(styleArtist.Render(c.glyph))
			case c.kind == graph.KindLabel:
				b.WriteString(styleLabel.Render(c.glyph))
			default:
				b.WriteString(styleTrack.Render(c.glyph))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
