package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/dhabedank/strategem/internal/core"
)

func sampleOutcomes() *core.ResultSet {
	return &core.ResultSet{Outcomes: []core.Outcome{
		{Framework: "porter", Title: "Porter", Status: core.StatusSucceeded, Calls: 1, InputChars: 4000, OutputChars: 2000, Duration: 2 * time.Second},
		{Framework: "systems", Title: "Systems", Status: core.StatusDegraded, Missing: []string{"bottlenecks"}, Calls: 2, InputChars: 4000, OutputChars: 400, Duration: time.Second},
		{Framework: "swot", Title: "Swot", Status: core.StatusFailed, Reason: core.ReasonInferenceUnavailable, Calls: 2, InputChars: 4000},
	}}
}

func TestRenderFrameworkComplete(t *testing.T) {
	outcomes := sampleOutcomes().Outcomes

	assert.Contains(t, RenderFrameworkComplete(outcomes[0], "gpt-4o-mini"), "Porter")
	assert.Contains(t, RenderFrameworkComplete(outcomes[1], "gpt-4o-mini"), "missing: bottlenecks")
	assert.Contains(t, RenderFrameworkComplete(outcomes[2], "gpt-4o-mini"), "inference_unavailable")
}

func TestRenderSummary(t *testing.T) {
	summary := RenderSummary(sampleOutcomes(), "gpt-4o-mini")

	assert.Contains(t, summary, "1 succeeded")
	assert.Contains(t, summary, "1 degraded")
	assert.Contains(t, summary, "1 failed")
	assert.Contains(t, summary, "Calls: 5")
	assert.Contains(t, summary, "Time: 3s")
}

func TestLineObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLineObserver(&buf, "openai/gpt-4o-mini")

	obs.FrameworkStarted(0, 2, core.FrameworkSpec{Title: "Porter"})
	obs.FrameworkFinished(0, 2, sampleOutcomes().Outcomes[0])

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[1/2] Porter")
}

func TestProgressModel_Update(t *testing.T) {
	m := NewProgressModel("gpt-4o")

	next, _ := m.Update(FrameworkStartedMsg{Index: 1, Total: 2, Title: "Systems", Chars: 800})
	m = next.(ProgressModel)
	assert.Contains(t, m.View(), "[2/2] Systems")

	next, cmd := m.Update(FrameworkFinishedMsg{Outcome: sampleOutcomes().Outcomes[1]})
	m = next.(ProgressModel)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())

	next, cmd = m.Update(DoneMsg{})
	m = next.(ProgressModel)
	assert.True(t, m.quitting)
	assert.Equal(t, tea.Quit(), cmd())
}
