package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/strategem/internal/core"
	"github.com/dhabedank/strategem/internal/ingest"
	"github.com/dhabedank/strategem/internal/report"
)

var fixedClock = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

func newRegistry(t *testing.T) *core.Registry {
	t.Helper()
	reg := core.NewRegistry()
	require.NoError(t, reg.Register(core.FrameworkSpec{
		Name:  "porter",
		Title: "Operating Environment Structure",
		Lens:  "Porter's Five Forces",
		Fields: []core.FieldSpec{
			{Key: "rivalry", Title: "Competitive Rivalry", Kind: core.KindMapping, Required: true},
			{Key: "buyer_power", Title: "Bargaining Power of Buyers", Kind: core.KindMapping, Required: true},
			{Key: "key_risks", Title: "Key Structural Risks", Kind: core.KindList},
		},
	}))
	require.NoError(t, reg.Register(core.FrameworkSpec{
		Name:  "systems_dynamics",
		Title: "Target System Dynamics",
		Fields: []core.FieldSpec{
			{Key: "system_overview", Title: "System Overview", Required: true},
			{Key: "bottlenecks", Title: "Bottlenecks", Kind: core.KindList, Required: true},
			{Key: "unknowns", Title: "Unknowns", Kind: core.KindList},
		},
	}))
	return reg
}

func newContext(t *testing.T) *ingest.ProblemContext {
	t.Helper()
	pc, err := ingest.FromText("A regional grocer is losing share to discounters.", ingest.Options{Title: "Grocer"})
	require.NoError(t, err)
	return pc
}

func sampleResults() *core.ResultSet {
	return &core.ResultSet{Outcomes: []core.Outcome{
		{
			Framework: "porter",
			Title:     "Operating Environment Structure",
			Status:    core.StatusSucceeded,
			Strategy:  core.StrategyStrictJSON,
			Record: core.Record{
				"rivalry": map[string]any{
					"level":     "high",
					"rationale": "many discounters",
					"unknowns":  []any{"Discounter expansion plans", "Loyalty program churn"},
				},
				"buyer_power": map[string]any{"level": "medium"},
				"key_risks":   []any{"Price war"},
			},
		},
		{
			Framework: "systems_dynamics",
			Title:     "Target System Dynamics",
			Status:    core.StatusDegraded,
			Strategy:  core.StrategyHeuristic,
			Missing:   []string{"bottlenecks"},
			Record: core.Record{
				"system_overview": "Thin margins drive store closures.",
				"unknowns":        []any{"Loyalty program churn", "Supplier terms"},
			},
		},
	}}
}

func TestAssemble_Sections(t *testing.T) {
	a := report.NewAssembler(newRegistry(t), fixedClock)

	md := a.Assemble("abc123", newContext(t), sampleResults())

	assert.True(t, strings.HasPrefix(md, "# Strategic Analysis Report\n"))
	assert.Contains(t, md, "**Analysis ID:** abc123")
	assert.Contains(t, md, "**Generated:** 2026-03-04 05:06:07")
	assert.Contains(t, md, "**Frameworks:** 1 succeeded, 1 degraded, 0 failed")
	assert.Contains(t, md, "| Operating Environment Structure | succeeded | strict_json | - |")
	assert.Contains(t, md, "| Target System Dynamics | degraded | heuristic | bottlenecks |")
	assert.Contains(t, md, "*Source: direct_input*")
	assert.Contains(t, md, "*Lens: Porter's Five Forces*")
	assert.Contains(t, md, "**Level:** high")
	assert.Contains(t, md, "**Unknowns:**\n- Discounter expansion plans")
	assert.Contains(t, md, "### Key Structural Risks\n\n- Price war")
	assert.Contains(t, md, "> **Partial analysis.** Missing required fields: bottlenecks.")
	assert.Contains(t, md, "does not constitute investment advice")

	// Schema order, not map order.
	assert.Less(t, strings.Index(md, "### Competitive Rivalry"), strings.Index(md, "### Bargaining Power of Buyers"))
	// Result-set order.
	assert.Less(t, strings.Index(md, "## Operating Environment Structure"), strings.Index(md, "## Target System Dynamics"))
}

func TestAssemble_OpenQuestionsDeduplicated(t *testing.T) {
	a := report.NewAssembler(newRegistry(t), fixedClock)

	md := a.Assemble("id", newContext(t), sampleResults())

	want := "## Open Questions & Missing Information\n\n" +
		"- Discounter expansion plans\n" +
		"- Loyalty program churn\n" +
		"- Supplier terms"
	assert.Contains(t, md, want)

	_, section, found := strings.Cut(md, "## Open Questions & Missing Information")
	require.True(t, found)
	section, _, _ = strings.Cut(section, "\n## ")
	assert.Equal(t, 1, strings.Count(section, "- Loyalty program churn"))
}

func TestAssemble_FailedOutcomeIsNeverOmitted(t *testing.T) {
	results := &core.ResultSet{Outcomes: []core.Outcome{
		{
			Framework: "porter",
			Title:     "Operating Environment Structure",
			Status:    core.StatusFailed,
			Reason:    core.ReasonUnparseable,
			Detail:    "no parsing strategy recovered any required field",
			Attempted: []core.Strategy{core.StrategyStrictJSON, core.StrategyRelaxedYAML, core.StrategyHeuristic},
		},
		{
			Framework: "systems_dynamics",
			Status:    core.StatusFailed,
			Reason:    core.ReasonInferenceUnavailable,
			Detail:    "connection refused",
		},
	}}
	a := report.NewAssembler(newRegistry(t), fixedClock)

	md := a.Assemble("id", newContext(t), results)

	assert.Equal(t, 2, strings.Count(md, report.IncompleteMarker))
	assert.Contains(t, md, "**Strategies attempted:** strict_json, relaxed_yaml, heuristic")
	assert.Contains(t, md, "inference service unavailable (connection refused)")
	assert.Contains(t, md, "## Systems dynamics")
	assert.Contains(t, md, "No critical unknowns identified.")
	assert.Contains(t, md, "- 2 framework(s) produced no usable analysis.")
}

func TestAssemble_UnknownFrameworkRendersRecord(t *testing.T) {
	results := &core.ResultSet{Outcomes: []core.Outcome{{
		Framework: "swot",
		Status:    core.StatusSucceeded,
		Record:    core.Record{"threats": "new entrants", "strengths": []any{"brand"}},
	}}}
	a := report.NewAssembler(nil, fixedClock)

	md := a.Assemble("id", nil, results)

	assert.Contains(t, md, "## Swot")
	assert.Contains(t, md, "### Strengths\n\n- brand")
	assert.Contains(t, md, "### Threats\n\nnew entrants")
	assert.Contains(t, md, "*No context recorded*")
}

func TestAssemble_Deterministic(t *testing.T) {
	a := report.NewAssembler(newRegistry(t), fixedClock)
	pc := newContext(t)

	first := a.Assemble("id", pc, sampleResults())
	second := a.Assemble("id", pc, sampleResults())

	assert.Equal(t, first, second)
}

func TestAssemble_EmptyResultSet(t *testing.T) {
	a := report.NewAssembler(newRegistry(t), fixedClock)

	md := a.Assemble("id", newContext(t), nil)

	assert.Contains(t, md, "No frameworks were run.")
}

func TestAssemble_DecisionFocus(t *testing.T) {
	a := report.NewAssembler(newRegistry(t), fixedClock)
	focus, err := ingest.NewDecisionFocus("Which channel carries the launch?", "compare", []string{"Direct", "Wholesale"})
	require.NoError(t, err)
	pc, err := ingest.FromText("A regional grocer is losing share to discounters.", ingest.Options{DecisionFocus: focus})
	require.NoError(t, err)

	md := a.Assemble("id", pc, sampleResults())

	assert.Contains(t, md, "### Decision Focus\n\n**Question:** Which channel carries the launch?  \n**Type:** compare\n\n**Options:**\n- Direct\n- Wholesale")
	assert.NotContains(t, md, "Inferred from the provided material")

	pc.FocusStatus = ingest.FocusDerived
	assert.Contains(t, a.Assemble("id", pc, sampleResults()), "*Inferred from the provided material, not stated by the user.*")

	assert.NotContains(t, a.Assemble("id", newContext(t), sampleResults()), "### Decision Focus")
}
