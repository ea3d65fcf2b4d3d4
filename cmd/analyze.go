package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dhabedank/strategem/internal/ingest"
	"github.com/dhabedank/strategem/internal/report"
	"github.com/dhabedank/strategem/internal/store"
	"github.com/dhabedank/strategem/internal/tui"
)

var (
	inputText        string
	inputFile        string
	title            string
	problemStatement string
	objectives       []string
	constraints      []string
	assumptions      []string
	frameworkNames   []string
	outputPath       string
	noProgress       bool
	decisionQuestion string
	decisionType     string
	decisionOptions  []string
)

// AnalyzeCmd runs analytical frameworks over a problem context.
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a problem through strategic frameworks",
	Long: `Analyze a problem context through one or more analytical frameworks.

Each framework gets the same structured context and must answer with a
fixed set of fields. Responses are parsed strictly, then leniently, then
heuristically; incomplete answers are kept and flagged rather than dropped.

The report and the full analysis are saved to the configured store.`,
	Example: `  strategem analyze --text "A regional grocer is losing share to discounters"
  strategem analyze --file brief.md --framework porter --output report.md
  strategem analyze --file brief.md --decision-question "Which channel carries the launch?" \
    --decision-type compare --options "Direct to store,Wholesale"`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	f := AnalyzeCmd.Flags()
	f.StringVar(&inputText, "text", "", "Problem context as text")
	f.StringVarP(&inputFile, "file", "f", "", "Problem context from a file")
	f.StringVar(&title, "title", "", "Analysis title")
	f.StringVar(&problemStatement, "problem-statement", "", "Problem statement")
	f.StringArrayVar(&objectives, "objective", nil, "Objective (repeatable)")
	f.StringArrayVar(&constraints, "constraint", nil, "Constraint (repeatable)")
	f.StringArrayVar(&assumptions, "assumption", nil, "Declared assumption (repeatable)")
	f.StringSliceVar(&frameworkNames, "framework", nil, "Framework to run (repeatable; default: all)")
	f.StringVarP(&outputPath, "output", "o", "", "Also write the report to this path")
	f.BoolVar(&noProgress, "no-progress", false, "Print plain progress lines instead of a spinner")
	f.StringVar(&decisionQuestion, "decision-question", "", "Decision the analysis should serve")
	f.StringVar(&decisionType, "decision-type", "", "Decision type: explore, compare or stress_test")
	f.StringSliceVar(&decisionOptions, "options", nil, "Comma-separated options under consideration")
	addLLMFlags(AnalyzeCmd)
	addConfigFlags(AnalyzeCmd)

	AnalyzeCmd.MarkFlagsMutuallyExclusive("text", "file")
	AnalyzeCmd.MarkFlagsOneRequired("text", "file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pc, err := problemContext()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	names, err := a.service.Resolve(frameworkNames)
	if err != nil {
		return err
	}

	fmt.Println(tui.TitleStyle.Render("Strategem") + "  " + tui.HelpStyle.Render(pc.Title))
	if f := pc.DecisionFocus; f != nil {
		fmt.Printf("Decision focus (%s): %s\n", pc.FocusStatus, f.Question)
		fmt.Printf("  Options: %s\n", strings.Join(f.Options, ", "))
	}
	fmt.Printf("Running %d framework(s) with %s\n\n", len(names), tui.ModelStyle.Render(a.model))

	var analysis *store.Analysis
	if !noProgress && term.IsTerminal(int(os.Stdout.Fd())) {
		analysis, err = analyzeInteractive(ctx, a, pc, names)
	} else {
		analysis, err = a.service.Analyze(ctx, pc, names, tui.NewLineObserver(os.Stdout, a.model))
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(analysis.Report), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	fmt.Print(tui.RenderSummary(analysis.Results, a.model))
	fmt.Printf("  Analysis ID: %s\n", tui.ModelStyle.Render(analysis.ID))
	if fs, ok := a.store.(*store.FileStore); ok {
		fmt.Printf("  Saved: %s\n", fs.AnalysisPath(analysis.ID))
		fmt.Printf("  Report: %s\n", fs.ReportPath(analysis.ID))
	} else {
		fmt.Printf("  Saved to %s store\n", a.store.Name())
	}
	if outputPath != "" {
		fmt.Printf("  Report copy: %s\n", outputPath)
	}
	fmt.Printf("\nView with: strategem show %s\n\n", analysis.ID)
	fmt.Println(tui.HelpStyle.Render(report.Disclaimer))
	return nil
}

func problemContext() (*ingest.ProblemContext, error) {
	focus, err := decisionFocus(decisionQuestion, decisionType, decisionOptions, os.Stderr)
	if err != nil {
		return nil, err
	}
	opts := ingest.Options{
		Title:               title,
		ProblemStatement:    problemStatement,
		Objectives:          objectives,
		Constraints:         constraints,
		DeclaredAssumptions: assumptions,
		DecisionFocus:       focus,
	}
	if inputFile != "" {
		return ingest.FromFile(inputFile, opts)
	}
	return ingest.FromText(inputText, opts)
}

// decisionFocus builds an explicit focus when both a question and options
// are given. With only one of them it warns and leaves the focus to be
// inferred from the material.
func decisionFocus(question, typ string, options []string, warn io.Writer) (*ingest.DecisionFocus, error) {
	if _, err := ingest.ParseDecisionType(typ); err != nil {
		return nil, err
	}
	hasQuestion := strings.TrimSpace(question) != ""
	hasOptions := len(options) > 0
	if hasQuestion && hasOptions {
		return ingest.NewDecisionFocus(question, typ, options)
	}
	if hasQuestion || hasOptions {
		fmt.Fprintln(warn, tui.WarningStyle.Render("Decision focus needs both --decision-question and --options; inferring it from the material instead."))
	}
	return nil, nil
}

// analyzeInteractive runs the analysis behind a spinner. Quitting the
// spinner cancels the in-flight analysis; outcomes gathered so far are
// still stored.
func analyzeInteractive(ctx context.Context, a *app, pc *ingest.ProblemContext, names []string) (*store.Analysis, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.NewProgressModel(a.model))
	observer := tui.ProgramObserver{Program: p, Chars: len(pc.StructuredContent)}

	var (
		analysis *store.Analysis
		runErr   error
	)
	done := make(chan struct{})
	go func() {
		analysis, runErr = a.service.Analyze(ctx, pc, names, observer)
		close(done)
		p.Send(tui.DoneMsg{})
	}()

	_, err := p.Run()
	select {
	case <-done:
	default:
		cancel()
		<-done
	}
	if err != nil {
		return nil, fmt.Errorf("progress display: %w", err)
	}
	return analysis, runErr
}
