package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhabedank/strategem/internal/tui"
)

// FrameworksCmd lists registered frameworks.
var FrameworksCmd = &cobra.Command{
	Use:   "frameworks",
	Short: "List available analytical frameworks",
	Args:  cobra.NoArgs,
	RunE:  runFrameworks,
}

func init() {
	addConfigFlags(FrameworksCmd)
}

func runFrameworks(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, spec := range a.registry.List() {
		fmt.Printf("%s  %s\n", tui.TitleStyle.Render(spec.Name), tui.FrameworkStyle.Render(spec.Title))
		if spec.Lens != "" {
			fmt.Printf("  Lens: %s\n", spec.Lens)
		}
		if spec.Description != "" {
			fmt.Printf("  %s\n", tui.HelpStyle.Render(spec.Description))
		}
		fmt.Printf("  Required: %s\n\n", tui.ModelStyle.Render(strings.Join(spec.RequiredKeys(), ", ")))
	}
	if len(a.cfg.Frameworks.Default) > 0 {
		fmt.Printf("Default selection: %s\n", strings.Join(a.cfg.Frameworks.Default, ", "))
	}
	return nil
}
