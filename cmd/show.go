package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var showRaw bool

// ShowCmd renders a stored report.
var ShowCmd = &cobra.Command{
	Use:   "show <analysis-id>",
	Short: "Show the report of a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Print markdown without rendering")
	addConfigFlags(ShowCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(); err != nil {
		return err
	}

	analysis, err := a.store.Load(ctx, args[0])
	if err != nil {
		return err
	}

	if showRaw || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println(analysis.Report)
		return nil
	}

	out, err := renderMarkdown(analysis.Report)
	if err != nil {
		a.logger.Sugar().Warnf("markdown rendering failed, printing raw: %v", err)
		fmt.Println(analysis.Report)
		return nil
	}
	fmt.Print(out)
	return nil
}

func renderMarkdown(md string) (string, error) {
	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < width {
		width = w
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}
