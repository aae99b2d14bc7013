package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/bemuq/internal/viz"
)

func update(t *testing.T, m batchModel, msg tea.Msg) (batchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(batchModel)
	require.True(t, ok)
	return bm, cmd
}

func TestBatchModelProgress(t *testing.T) {
	m := newBatchModel("screening", viz.Current(), func() {})

	m, _ = update(t, m, progressMsg{done: 3, total: 10})
	m, _ = update(t, m, progressMsg{done: 2, total: 10})
	assert.Equal(t, 3, m.done, "late progress never moves backwards")

	m, cmd := update(t, m, tickMsg(m.start.Add(tickInterval)))
	assert.NotNil(t, cmd)
	require.Len(t, m.rates, 1)
	assert.InDelta(t, 12, m.rates[0], 1e-9)

	eta, ok := m.eta()
	require.True(t, ok)
	assert.Equal(t, time.Second, eta.Round(time.Second))

	view := m.View()
	assert.Contains(t, view, "screening")
	assert.Contains(t, view, "3/10")
	assert.Contains(t, view, "q cancel")
}

func TestBatchModelCancel(t *testing.T) {
	cancelled := 0
	m := newBatchModel("run", viz.Current(), func() { cancelled++ })

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Equal(t, 1, cancelled)
	assert.Contains(t, m.View(), "cancelling")

	err := errors.New("context canceled")
	m, cmd := update(t, m, finishedMsg{err: err})
	assert.True(t, m.finished)
	assert.Equal(t, err, m.err)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestSparkline(t *testing.T) {
	assert.Empty(t, sparkline(nil, 10))
	assert.Equal(t, "▁█", sparkline([]float64{0, 4}, 10))

	line := sparkline([]float64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, 3, len([]rune(line)))
	assert.True(t, strings.HasSuffix(line, "█"))
}
