package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dhabedank/strategem/internal/tui"
)

// ListCmd prints stored analyses.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored analyses, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	addConfigFlags(ListCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openStore(); err != nil {
		return err
	}

	summaries, err := a.store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing analyses: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println(tui.HelpStyle.Render("No analyses yet. Run: strategem analyze --text \"...\""))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tui.TableBorderStyle).
		Headers("ID", "CREATED", "TITLE", "OK", "PARTIAL", "FAILED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tui.SubtitleStyle.Padding(0, 1)
			}
			return tui.TableCellStyle
		})
	for _, s := range summaries {
		t.Row(
			s.ID,
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			s.Title,
			strconv.Itoa(s.Succeeded),
			strconv.Itoa(s.Degraded),
			strconv.Itoa(s.Failed),
		)
	}
	fmt.Println(t.Render())
	return nil
}
