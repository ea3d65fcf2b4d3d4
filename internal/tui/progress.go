package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dhabedank/strategem/internal/core"
)

// FrameworkStartedMsg tells the progress model a framework began.
type FrameworkStartedMsg struct {
	Index int
	Total int
	Title string
	Chars int
}

// FrameworkFinishedMsg tells the progress model a framework ended.
type FrameworkFinishedMsg struct {
	Outcome core.Outcome
}

// DoneMsg stops the progress model.
type DoneMsg struct{}

// ProgressModel is a Bubble Tea model showing a spinner for the running
// framework and printing a line as each one finishes.
type ProgressModel struct {
	spinner  spinner.Model
	model    string
	current  FrameworkStartedMsg
	started  time.Time
	running  bool
	quitting bool
}

// NewProgressModel creates a progress model for the given LLM model name.
func NewProgressModel(model string) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return ProgressModel{spinner: s, model: model}
}

// Init implements tea.Model.
func (p ProgressModel) Init() tea.Cmd {
	return p.spinner.Tick
}

// Update implements tea.Model.
func (p ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			p.quitting = true
			return p, tea.Quit
		}

	case FrameworkStartedMsg:
		p.current = msg
		p.started = time.Now()
		p.running = true
		return p, nil

	case FrameworkFinishedMsg:
		p.running = false
		return p, tea.Println(RenderFrameworkComplete(msg.Outcome, p.model))

	case DoneMsg:
		p.running = false
		p.quitting = true
		return p, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}

	return p, nil
}

// View implements tea.Model.
func (p ProgressModel) View() string {
	if p.quitting || !p.running {
		return ""
	}
	elapsed := time.Since(p.started).Truncate(time.Second)
	return fmt.Sprintf("%s %s  %s  %s  ~%s input",
		p.spinner.View(),
		FrameworkStyle.Render(fmt.Sprintf("[%d/%d] %s", p.current.Index+1, p.current.Total, p.current.Title)),
		ModelStyle.Render(p.model),
		HelpStyle.Render(elapsed.String()),
		FormatTokens(EstimateTokens(p.current.Chars)),
	)
}

// ProgramObserver forwards coordinator progress to a running tea.Program.
type ProgramObserver struct {
	Program *tea.Program
	Chars   int
}

func (o ProgramObserver) FrameworkStarted(index, total int, spec core.FrameworkSpec) {
	o.Program.Send(FrameworkStartedMsg{Index: index, Total: total, Title: spec.Title, Chars: o.Chars})
}

func (o ProgramObserver) FrameworkFinished(index, total int, outcome core.Outcome) {
	o.Program.Send(FrameworkFinishedMsg{Outcome: outcome})
}

// LineObserver prints one line per framework start and finish
// (non-interactive mode).
type LineObserver struct {
	mu    sync.Mutex
	w     io.Writer
	model string
}

// NewLineObserver creates a line observer writing to w.
func NewLineObserver(w io.Writer, model string) *LineObserver {
	return &LineObserver{w: w, model: model}
}

func (o *LineObserver) FrameworkStarted(index, total int, spec core.FrameworkSpec) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.w, RenderFrameworkStart(index, total, spec.Title, o.model))
}

func (o *LineObserver) FrameworkFinished(index, total int, outcome core.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.w, RenderFrameworkComplete(outcome, o.model))
}

// RenderFrameworkStart returns a string for framework start (non-interactive mode).
func RenderFrameworkStart(index, total int, title, model string) string {
	return fmt.Sprintf("%s %s  %s",
		SpinnerStyle.Render("→"),
		FrameworkStyle.Render(fmt.Sprintf("[%d/%d] %s", index+1, total, title)),
		ModelStyle.Render(model),
	)
}

// RenderFrameworkComplete returns a string for framework completion.
func RenderFrameworkComplete(o core.Outcome, model string) string {
	inputTokens := EstimateTokens(o.InputChars * o.Calls)
	outputTokens := EstimateTokens(o.OutputChars)
	cost := EstimateCost(model, inputTokens, outputTokens)

	line := fmt.Sprintf("%s %s  %s  ~%s tokens  %s",
		statusMark(o.Status),
		FrameworkStyle.Render(o.Title),
		HelpStyle.Render(o.Duration.Truncate(time.Second).String()),
		FormatTokens(inputTokens+outputTokens),
		CostStyle.Render(FormatCost(cost)),
	)
	switch o.Status {
	case core.StatusDegraded:
		line += "  " + WarningStyle.Render("missing: "+strings.Join(o.Missing, ", "))
	case core.StatusFailed:
		line += "  " + ErrorStyle.Render(string(o.Reason))
	}
	return line
}

// RenderSummary returns the run summary.
func RenderSummary(results *core.ResultSet, model string) string {
	var totalInputTokens, totalOutputTokens, calls int
	var totalCost float64
	var totalDuration time.Duration

	for _, o := range results.Outcomes {
		inputTokens := EstimateTokens(o.InputChars * o.Calls)
		outputTokens := EstimateTokens(o.OutputChars)
		totalInputTokens += inputTokens
		totalOutputTokens += outputTokens
		totalCost += EstimateCost(model, inputTokens, outputTokens)
		totalDuration += o.Duration
		calls += o.Calls
	}
	succeeded, degraded, failed := results.Counts()

	return fmt.Sprintf("\n%s\n  Frameworks: %s %s %s  Calls: %d  Tokens: ~%s in / ~%s out  Est. cost: %s  Time: %s\n",
		TitleStyle.Render("Analysis Complete"),
		SuccessStyle.Render(fmt.Sprintf("%d succeeded", succeeded)),
		WarningStyle.Render(fmt.Sprintf("%d degraded", degraded)),
		ErrorStyle.Render(fmt.Sprintf("%d failed", failed)),
		calls,
		FormatTokens(totalInputTokens),
		FormatTokens(totalOutputTokens),
		CostStyle.Render(FormatCost(totalCost)),
		totalDuration.Truncate(time.Second).String(),
	)
}

func statusMark(s core.Status) string {
	mark := "✗"
	switch s {
	case core.StatusSucceeded:
		mark = "✓"
	case core.StatusDegraded:
		mark = "~"
	}
	return StatusStyle(s).Render(mark)
}
