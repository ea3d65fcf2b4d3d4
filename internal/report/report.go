// Package report renders an analysis result set as a markdown report.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dhabedank/strategem/internal/core"
	"github.com/dhabedank/strategem/internal/ingest"
)

const (
	// SummaryChars bounds the context summary.
	SummaryChars = 500

	// IncompleteMarker heads the section of a failed framework.
	IncompleteMarker = "*Analysis Incomplete*"

	// Disclaimer closes every report.
	Disclaimer = "*This report was generated by Strategem. It provides analytical structure and does not constitute investment advice.*"

	timeLayout = "2006-01-02 15:04:05"
	unknownKey = "unknowns"
)

// Clock returns the generation time stamped on a report.
type Clock func() time.Time

// Assembler turns result sets into markdown.
type Assembler struct {
	registry *core.Registry
	clock    Clock
}

// NewAssembler creates an assembler. Field order and titles come from
// registry; frameworks it does not know are rendered from their records.
func NewAssembler(registry *core.Registry, clock Clock) *Assembler {
	if clock == nil {
		clock = time.Now
	}
	return &Assembler{registry: registry, clock: clock}
}

// Assemble renders the full report. Every outcome gets a section.
func (a *Assembler) Assemble(id string, pc *ingest.ProblemContext, results *core.ResultSet) string {
	if results == nil {
		results = &core.ResultSet{}
	}

	sections := []string{
		a.header(id, pc, results),
		statusTable(results),
		contextSummary(pc),
	}
	for _, outcome := range results.Outcomes {
		sections = append(sections, a.section(outcome))
	}
	sections = append(sections, openQuestions(results), limitations(results), Disclaimer)

	return strings.Join(sections, "\n\n---\n\n") + "\n"
}

func (a *Assembler) header(id string, pc *ingest.ProblemContext, results *core.ResultSet) string {
	var b strings.Builder
	b.WriteString("# Strategic Analysis Report\n\n")
	if pc != nil && pc.Title != "" {
		fmt.Fprintf(&b, "**Title:** %s  \n", pc.Title)
	}
	fmt.Fprintf(&b, "**Analysis ID:** %s  \n", id)
	fmt.Fprintf(&b, "**Generated:** %s", a.clock().UTC().Format(timeLayout))

	succeeded, degraded, failed := results.Counts()
	fmt.Fprintf(&b, "  \n**Frameworks:** %d succeeded, %d degraded, %d failed", succeeded, degraded, failed)
	return b.String()
}

func statusTable(results *core.ResultSet) string {
	var b strings.Builder
	b.WriteString("## Framework Status\n\n")
	if len(results.Outcomes) == 0 {
		b.WriteString("No frameworks were run.")
		return b.String()
	}
	b.WriteString("| Framework | Status | Strategy | Missing |\n")
	b.WriteString("|---|---|---|---|")
	for _, o := range results.Outcomes {
		missing := "-"
		if len(o.Missing) > 0 {
			missing = strings.Join(o.Missing, ", ")
		}
		strategy := "-"
		if o.Strategy != core.StrategyNone {
			strategy = o.Strategy.String()
		}
		fmt.Fprintf(&b, "\n| %s | %s | %s | %s |", titleOf(o), o.Status, strategy, missing)
	}
	return b.String()
}

func contextSummary(pc *ingest.ProblemContext) string {
	if pc == nil {
		return "## Context Summary\n\n*No context recorded*"
	}
	summary := fmt.Sprintf("## Context Summary\n\n%s\n\n*Source: %s*", pc.Summary(SummaryChars), pc.Source())
	if pc.DecisionFocus == nil {
		return summary
	}
	return summary + "\n\n" + decisionFocus(pc.DecisionFocus, pc.FocusStatus)
}

func decisionFocus(f *ingest.DecisionFocus, status ingest.FocusStatus) string {
	var b strings.Builder
	b.WriteString("### Decision Focus\n\n")
	fmt.Fprintf(&b, "**Question:** %s  \n", f.Question)
	fmt.Fprintf(&b, "**Type:** %s\n\n", f.Type)
	b.WriteString("**Options:**")
	for _, o := range f.Options {
		b.WriteString("\n- " + o)
	}
	if status == ingest.FocusDerived {
		b.WriteString("\n\n*Inferred from the provided material, not stated by the user.*")
	}
	return b.String()
}

func (a *Assembler) section(o core.Outcome) string {
	spec, known := a.spec(o.Framework)

	var b strings.Builder
	fmt.Fprintf(&b, "## %s", titleOf(o))
	if known && spec.Lens != "" {
		fmt.Fprintf(&b, "\n\n*Lens: %s*", spec.Lens)
	}

	switch o.Status {
	case core.StatusFailed:
		b.WriteString("\n\n" + IncompleteMarker)
		fmt.Fprintf(&b, "\n\n**Reason:** %s", failureText(o))
		if len(o.Attempted) > 0 {
			names := make([]string, len(o.Attempted))
			for i, s := range o.Attempted {
				names[i] = s.String()
			}
			fmt.Fprintf(&b, "  \n**Strategies attempted:** %s", strings.Join(names, ", "))
		}
		return b.String()
	case core.StatusDegraded:
		fmt.Fprintf(&b, "\n\n> **Partial analysis.** Missing required fields: %s.", strings.Join(o.Missing, ", "))
	}

	for _, f := range fieldOrder(spec, known, o.Record) {
		value, ok := o.Record[f.key]
		if !ok {
			continue
		}
		body := renderValue(value)
		if body == "" {
			continue
		}
		fmt.Fprintf(&b, "\n\n### %s\n\n%s", f.title, body)
	}
	return b.String()
}

func (a *Assembler) spec(name string) (core.FrameworkSpec, bool) {
	if a.registry == nil {
		return core.FrameworkSpec{}, false
	}
	spec, err := a.registry.Get(name)
	if err != nil {
		return core.FrameworkSpec{}, false
	}
	return spec, true
}

type field struct {
	key   string
	title string
}

// fieldOrder lists schema fields in declaration order, then any extra
// record keys alphabetically.
func fieldOrder(spec core.FrameworkSpec, known bool, record core.Record) []field {
	seen := make(map[string]bool)
	var fields []field
	if known {
		for _, f := range spec.Fields {
			key := core.NormalizeKey(f.Key)
			seen[key] = true
			title := f.Title
			if title == "" {
				title = humanize(key)
			}
			fields = append(fields, field{key: key, title: title})
		}
	}
	extra := make([]string, 0, len(record))
	for k := range record {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		fields = append(fields, field{key: k, title: humanize(k)})
	}
	return fields
}

func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		return bullets(val)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			switch inner := val[k].(type) {
			case []any:
				if list := bullets(inner); list != "" {
					lines = append(lines, fmt.Sprintf("**%s:**\n%s", humanize(k), list))
				}
			default:
				if text := core.ValueText(inner); text != "" {
					lines = append(lines, fmt.Sprintf("**%s:** %s", humanize(k), text))
				}
			}
		}
		return strings.Join(lines, "\n\n")
	default:
		return core.ValueText(val)
	}
}

func bullets(items []any) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if text := core.ValueText(item); text != "" {
			lines = append(lines, "- "+text)
		}
	}
	return strings.Join(lines, "\n")
}

func openQuestions(results *core.ResultSet) string {
	var questions []string
	seen := make(map[string]bool)
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q != "" && !seen[q] {
			seen[q] = true
			questions = append(questions, q)
		}
	}
	for _, o := range results.Outcomes {
		collectUnknowns(map[string]any(o.Record), add)
	}

	var b strings.Builder
	b.WriteString("## Open Questions & Missing Information\n\n")
	if len(questions) == 0 {
		b.WriteString("No critical unknowns identified.")
		return b.String()
	}
	for i, q := range questions {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + q)
	}
	return b.String()
}

// collectUnknowns walks m in sorted key order so output is stable.
func collectUnknowns(m map[string]any, add func(string)) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch val := m[k].(type) {
		case map[string]any:
			if k == unknownKey {
				add(core.ValueText(val))
				continue
			}
			collectUnknowns(val, add)
		case []any:
			if k != unknownKey {
				continue
			}
			for _, item := range val {
				add(core.ValueText(item))
			}
		case string:
			if k == unknownKey {
				add(val)
			}
		}
	}
}

func limitations(results *core.ResultSet) string {
	lines := []string{
		"## Limitations",
		"",
		"- Each framework was applied independently; no reconciliation between frameworks was attempted.",
		"- Findings are model-generated from the supplied context only and have not been verified.",
	}
	_, degraded, failed := results.Counts()
	if degraded > 0 {
		lines = append(lines, fmt.Sprintf("- %d framework(s) returned partial output; missing fields are listed in their sections.", degraded))
	}
	if failed > 0 {
		lines = append(lines, fmt.Sprintf("- %d framework(s) produced no usable analysis.", failed))
	}
	return strings.Join(lines, "\n")
}

func failureText(o core.Outcome) string {
	var reason string
	switch o.Reason {
	case core.ReasonInferenceUnavailable:
		reason = "inference service unavailable"
	case core.ReasonUnparseable:
		reason = "response could not be parsed"
	default:
		reason = "unknown error"
	}
	if o.Detail != "" {
		reason += " (" + o.Detail + ")"
	}
	return reason
}

func titleOf(o core.Outcome) string {
	if o.Title != "" {
		return o.Title
	}
	return humanize(o.Framework)
}

// humanize turns a normalized key into a label: "key_risks" -> "Key risks".
func humanize(key string) string {
	s := strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
