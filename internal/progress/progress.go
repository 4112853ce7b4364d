// Package progress reports indeterminate progress for long-running steps.
// On a terminal it renders a spinner; elsewhere it prints one line per step.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Reporter shows that work is ongoing without item-level progress.
type Reporter interface {
	Start(message string)
	Stop()
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Start(string) {}
func (Nop) Stop()        {}

// For returns a Spinner when w is a terminal, otherwise a Lines reporter.
func For(w io.Writer) Reporter {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return NewSpinner(f)
	}
	return &Lines{W: w}
}

// Lines prints "message..." on Start and "message done (elapsed)" on Stop.
type Lines struct {
	W       io.Writer
	message string
	started time.Time
}

func (l *Lines) Start(message string) {
	l.message, l.started = message, time.Now()
	fmt.Fprintf(l.W, "%s...\n", message)
}

func (l *Lines) Stop() {
	if l.message == "" {
		return
	}
	fmt.Fprintf(l.W, "%s done (%s)\n", l.message, time.Since(l.started).Round(time.Millisecond))
	l.message = ""
}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// Spinner renders a bubbletea spinner until Stop is called.
type Spinner struct {
	out  io.Writer
	mu   sync.Mutex
	prog *tea.Program
	done chan struct{}
}

func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prog != nil {
		return
	}
	m := spinnerModel{
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		message: message,
		started: time.Now(),
	}
	s.prog = tea.NewProgram(m, tea.WithOutput(s.out), tea.WithInput(nil), tea.WithoutSignalHandler())
	s.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		_, _ = p.Run()
	}(s.prog, s.done)
}

func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prog == nil {
		return
	}
	s.prog.Send(stopMsg{})
	<-s.done
	s.prog = nil
}

type stopMsg struct{}

type spinnerModel struct {
	spin    spinner.Model
	message string
	started time.Time
	stopped bool
}

func (m spinnerModel) Init() tea.Cmd { return m.spin.Tick }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.stopped = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.stopped {
		return fmt.Sprintf("%s %s (%s)\n", doneStyle.Render("✓"), m.message, time.Since(m.started).Round(time.Millisecond))
	}
	return fmt.Sprintf("%s %s\n", m.spin.View(), m.message)
}
