package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/north-road/gps-replay/gps"
)

func newPlayCmd() *cobra.Command {
	playCmd := &cobra.Command{
		Use:   "play <log>",
		Short: "Replay a log interactively with a scrubbable timeline",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlayCmd,
	}
	playCmd.Flags().StringVar(&playSerialPort, "serial", "", "Serial port to forward replayed sentences to (e.g., /dev/ttyUSB0)")
	playCmd.Flags().IntVar(&playBaudRate, "baud", 9600, "Serial port baud rate")
	playCmd.Flags().DurationVar(&playRate, "rate", 200*time.Millisecond, "Playback advance interval")
	return playCmd
}

func runPlayCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	source, err := gps.NewReplaySource(cfg)
	if err != nil {
		return err
	}

	if playSerialPort != "" {
		port, err := openSerialPort(playSerialPort, playBaudRate)
		if err != nil {
			return fmt.Errorf("opening serial port %s: %w", playSerialPort, err)
		}
		defer port.Close()
		source.SetSentenceWriter(port)
	}

	m := newPlayModel(source, filepath.Base(args[0]))
	adapter := gps.NewSyncAdapter(source, m)
	if err := adapter.Connect(cmd.Context(), args[0]); err != nil {
		return err
	}
	defer adapter.Disconnect()
	source.AddCallback(m.fixChanged)

	_, err = tea.NewProgram(m).Run()
	return err
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	noFixStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5AC46B"))
)

type tickMsg time.Time

// playModel is the Bubble Tea scrubbing UI. It plays the role of the host's
// time controller: the sync adapter subscribes to it and every cursor move
// becomes one frame notification.
type playModel struct {
	source  *gps.ReplaySource
	logName string

	// TimeController state
	frame      func(gps.TimeRange)
	start, end time.Time

	cursor  time.Time
	playing bool

	fix    gps.Fix
	hasFix bool

	bar   progress.Model
	width int
}

func newPlayModel(source *gps.ReplaySource, logName string) *playModel {
	return &playModel{
		source:  source,
		logName: logName,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

// Subscribe implements gps.TimeController
func (m *playModel) Subscribe(callback func(gps.TimeRange)) {
	m.frame = callback
}

// SetExtent implements gps.TimeController
func (m *playModel) SetExtent(start, end time.Time) {
	m.start, m.end = start, end
	m.cursor = start
}

// fixChanged records the emitted fix for rendering
func (m *playModel) fixChanged(fix gps.Fix) {
	m.fix = fix
	m.hasFix = true
}

// Init implements tea.Model
func (m *playModel) Init() tea.Cmd {
	m.seek()
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(playRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// seek notifies the subscribed adapter of the current frame
func (m *playModel) seek() {
	if m.frame != nil {
		m.frame(gps.TimeRange{Begin: m.cursor, End: m.cursor.Add(time.Second)})
	}
	if m.source.State() == gps.ConnectedNoFix {
		m.hasFix = false
	}
}

func (m *playModel) moveCursor(delta time.Duration) {
	m.cursor = m.cursor.Add(delta)
	if m.cursor.Before(m.start) {
		m.cursor = m.start
	}
	if m.cursor.After(m.end) {
		m.cursor = m.end
	}
	m.seek()
}

// Update implements tea.Model
func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 4
		return m, nil

	case tickMsg:
		if !m.playing {
			return m, nil
		}
		m.moveCursor(playRate)
		if !m.cursor.Before(m.end) {
			m.playing = false
			return m, nil
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
			if m.playing {
				if !m.cursor.Before(m.end) {
					m.cursor = m.start
					m.seek()
				}
				return m, tick()
			}
		case "left", "h":
			m.moveCursor(-time.Second)
		case "right", "l":
			m.moveCursor(time.Second)
		case "pgup":
			m.moveCursor(-time.Minute)
		case "pgdown":
			m.moveCursor(time.Minute)
		case "home":
			m.cursor = m.start
			m.seek()
		case "end":
			m.cursor = m.end
			m.seek()
		}
	}
	return m, nil
}

// View implements tea.Model
func (m *playModel) View() string {
	status := "paused"
	if m.playing {
		status = "playing"
	}
	header := titleStyle.Render("gps-replay") + "  " +
		valueStyle.Render(m.logName) + "  " +
		statusStyle.Render(status)

	timeline := fmt.Sprintf("%s  %s  %s",
		labelStyle.Render(m.start.Format("15:04:05")),
		valueStyle.Render(m.cursor.Format("2006-01-02 15:04:05")),
		labelStyle.Render(m.end.Format("15:04:05")))

	var position string
	if m.hasFix {
		position = m.renderFix()
	} else {
		position = noFixStyle.Render("no fix at current time")
	}

	total := m.end.Sub(m.start)
	var fraction float64
	if total > 0 {
		fraction = float64(m.cursor.Sub(m.start)) / float64(total)
	}

	help := helpStyle.Render("space play/pause · ←/→ step 1s · pgup/pgdn 1m · home/end jump · q quit")

	return "\n " + header + "\n\n " + timeline + "\n " + m.bar.ViewAs(fraction) +
		"\n\n " + position + "\n\n " + help + "\n"
}

func (m *playModel) renderFix() string {
	f := m.fix.Fields
	line := fmt.Sprintf("%s %s",
		labelStyle.Render("fix"),
		valueStyle.Render(m.fix.Timestamp.Format("15:04:05")))
	if m.fix.HasPosition() {
		line += fmt.Sprintf("  %s %s",
			labelStyle.Render("pos"),
			valueStyle.Render(fmt.Sprintf("%.6f, %.6f", f.Latitude, f.Longitude)))
	}
	if f.HasAltitude {
		line += fmt.Sprintf("  %s %s", labelStyle.Render("alt"), valueStyle.Render(fmt.Sprintf("%.1fm", f.Altitude)))
	}
	if f.HasSpeed {
		line += fmt.Sprintf("  %s %s", labelStyle.Render("speed"), valueStyle.Render(fmt.Sprintf("%.1fkn", f.Speed)))
	}
	if f.HasCourse {
		line += fmt.Sprintf("  %s %s", labelStyle.Render("course"), valueStyle.Render(fmt.Sprintf("%.1f°", f.Course)))
	}
	if f.HasSatellites {
		line += fmt.Sprintf("  %s %s", labelStyle.Render("sats"), valueStyle.Render(fmt.Sprintf("%d", f.Satellites)))
	}
	return line
}
