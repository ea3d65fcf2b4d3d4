package version

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dhabedank/strategem/internal/tui"
)

// IsFirstRun reports whether neither a user config file nor the
// first-run marker exists.
func IsFirstRun() bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(home, ".strategem.yaml")); err == nil {
		return false
	}
	if _, err := os.Stat(markerPath(".initialized")); err == nil {
		return false
	}
	return true
}

// MarkInitialized creates the first-run marker.
func MarkInitialized() {
	path := markerPath(".initialized")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	_ = os.WriteFile(path, []byte{}, 0644)
}

// PrintFirstRunNotice prints a welcome message for first-time users.
func PrintFirstRunNotice(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s Welcome to strategem!\n", tui.TitleStyle.Render("*"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Quick start:")
	fmt.Fprintf(w, "    1. Run %s to choose a provider and model\n", tui.ModelStyle.Render("strategem setup"))
	fmt.Fprintf(w, "    2. Analyze a brief: %s\n", tui.ModelStyle.Render("strategem analyze --file brief.md"))
	fmt.Fprintf(w, "    3. Read the report: %s\n", tui.ModelStyle.Render("strategem show <id>"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", tui.HelpStyle.Render("Run 'strategem --help' for all options"))
	fmt.Fprintln(w)

	MarkInitialized()
}
