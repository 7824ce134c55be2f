// Package ui provides the Bubbletea progress view for offline renders.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-pedal/trace"
)

// Model is the Bubbletea model for one render.
type Model struct {
	Title       string
	Output      string
	SampleRate  float64
	TotalFrames int // zero when the length is unknown

	Frames  int
	Monitor trace.MonitorStats

	StartTime time.Time
	Elapsed   time.Duration

	Done      bool
	Cancelled bool
	Err       error

	Width int

	updates <-chan tea.Msg
	cancel  func()
}

// NewModel returns a model fed by updates. cancel is called when the user
// quits before the render finishes; the model then waits for the DoneMsg.
func NewModel(title, output string, sampleRate float64, totalFrames int, updates <-chan tea.Msg, cancel func()) Model {
	return Model{
		Title:       title,
		Output:      output,
		SampleRate:  sampleRate,
		TotalFrames: totalFrames,
		StartTime:   time.Now(),
		updates:     updates,
		cancel:      cancel,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.Done {
				return m, tea.Quit
			}

			if !m.Cancelled && m.cancel != nil {
				m.cancel()
			}

			m.Cancelled = true
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case ProgressMsg:
		m.Frames = msg.Frames
		m.Monitor = msg.Monitor
		m.Elapsed = time.Since(m.StartTime)

		return m, waitForUpdate(m.updates)

	case DoneMsg:
		m.Frames = msg.Frames
		m.Err = msg.Err
		m.Done = true
		m.Elapsed = time.Since(m.StartTime)

		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Done {
		return renderSummary(m)
	}

	return renderProgress(m)
}

// Progress returns the rendered fraction, or -1 when the length is unknown.
func (m Model) Progress() float64 {
	if m.TotalFrames <= 0 {
		return -1
	}

	return min(float64(m.Frames)/float64(m.TotalFrames), 1)
}

// AudioSeconds returns the length rendered so far.
func (m Model) AudioSeconds() float64 {
	if m.SampleRate <= 0 {
		return 0
	}

	return float64(m.Frames) / m.SampleRate
}

func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	if updates == nil {
		return nil
	}

	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return DoneMsg{Err: nil}
		}

		return msg
	}
}
