// Package tui shows a live view of a simulation batch.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/bemuq/internal/viz"
)

const (
	tickInterval = 250 * time.Millisecond
	historySize  = 60
	barWidth     = 40
)

// Work is a batch that reports progress as it goes.
type Work func(ctx context.Context, progress func(done, total int)) error

type progressMsg struct{ done, total int }

type finishedMsg struct{ err error }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type batchModel struct {
	title  string
	st     viz.Styles
	cancel context.CancelFunc

	done, total int
	lastDone    int
	start       time.Time
	now         time.Time
	rates       []float64

	cancelling bool
	finished   bool
	err        error
	width      int
}

func newBatchModel(title string, st viz.Styles, cancel context.CancelFunc) batchModel {
	now := time.Now()
	return batchModel{
		title:  title,
		st:     st,
		cancel: cancel,
		start:  now,
		now:    now,
		rates:  make([]float64, 0, historySize),
		width:  80,
	}
}

func (m batchModel) Init() tea.Cmd { return tick() }

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.cancelling {
				m.cancelling = true
				m.cancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case progressMsg:
		if msg.done > m.done {
			m.done = msg.done
		}
		m.total = msg.total
		return m, nil
	case tickMsg:
		m.now = time.Time(msg)
		rate := float64(m.done-m.lastDone) / tickInterval.Seconds()
		m.lastDone = m.done
		m.rates = append(m.rates, rate)
		if len(m.rates) > historySize {
			m.rates = m.rates[1:]
		}
		if m.finished {
			return m, nil
		}
		return m, tick()
	case finishedMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m batchModel) View() string {
	var b strings.Builder
	b.WriteString(m.st.Title.Render(m.title))
	b.WriteString("\n\n")

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	b.WriteString("  ")
	b.WriteString(viz.ProgressBar(m.st, pct, barWidth))
	b.WriteString(fmt.Sprintf(" %3.0f%%\n\n", pct*100))

	elapsed := m.now.Sub(m.start).Round(time.Second)
	pairs := []string{
		"runs", fmt.Sprintf("%d/%d", m.done, m.total),
		"elapsed", elapsed.String(),
	}
	if eta, ok := m.eta(); ok {
		pairs = append(pairs, "remaining", eta.String())
	}
	b.WriteString(viz.KeyValue(m.st, pairs...))

	if line := sparkline(m.rates, barWidth); line != "" {
		b.WriteString("\n  ")
		b.WriteString(m.st.Bar.Render(line))
		b.WriteString(m.st.Subtle.Render(" runs/s"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.finished:
		b.WriteString(m.st.Success.Render("  done"))
	case m.cancelling:
		b.WriteString(m.st.Warning.Render("  cancelling, waiting for running simulations..."))
	default:
		b.WriteString(m.st.Subtle.Render("  q cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// eta extrapolates the mean pace so far.
func (m batchModel) eta() (time.Duration, bool) {
	if m.done == 0 || m.total <= m.done {
		return 0, false
	}
	perRun := m.now.Sub(m.start) / time.Duration(m.done)
	return (perRun * time.Duration(m.total-m.done)).Round(time.Second), true
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	maxVal := 0.0
	for _, v := range data {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	var sb strings.Builder
	for _, v := range data {
		idx := int(v / maxVal * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

// RunBatch runs work while drawing its progress. Pressing q cancels the
// context handed to work; RunBatch still waits for work to return and
// reports its error.
func RunBatch(ctx context.Context, title string, st viz.Styles, work Work) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newBatchModel(title, st, cancel), tea.WithoutSignalHandler())

	result := make(chan error, 1)
	go func() {
		err := work(ctx, func(done, total int) {
			p.Send(progressMsg{done: done, total: total})
		})
		result <- err
		p.Send(finishedMsg{err: err})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-result
		return err
	}
	return <-result
}
