package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dhabedank/strategem/internal/config"
	"github.com/dhabedank/strategem/internal/llm"
	"github.com/dhabedank/strategem/internal/tui"
)

var resetConfig bool

// SetupCmd represents the setup command.
var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Long: `Configure strategem with an interactive wizard.

The wizard asks for:
- Provider: which LLM backend runs the frameworks
- Model: which model that provider should use

Configuration is saved to ~/.strategem.yaml. Other keys already in the
file are kept.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	SetupCmd.Flags().BoolVar(&resetConfig, "reset", false, "Reset configuration to defaults")
}

func runSetup(cmd *cobra.Command, args []string) error {
	configPath, err := config.UserFile()
	if err != nil {
		return err
	}

	if resetConfig {
		if err := os.Remove(configPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove config: %w", err)
		}
		fmt.Println(tui.SuccessStyle.Render("✓") + " Configuration reset to defaults")
		fmt.Printf("  Removed: %s\n", configPath)
		return nil
	}

	available := llm.ListAvailableAdapters(llm.DefaultConfig())

	p := tea.NewProgram(newSetupModel(available))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	final := m.(setupModel)
	if final.cancelled {
		fmt.Println("Setup cancelled")
		return nil
	}

	if err := saveSetup(configPath, final.provider, final.model); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println(tui.SuccessStyle.Render("✓") + " Configuration saved to " + configPath)
	fmt.Println()
	fmt.Printf("  Provider: %s\n", tui.ModelStyle.Render(final.provider))
	model := final.model
	if model == "" {
		model = "(provider default)"
	}
	fmt.Printf("  Model:    %s\n", tui.ModelStyle.Render(model))
	if env := keyEnvFor(final.provider); env != "" && os.Getenv(env) == "" {
		fmt.Println()
		fmt.Println(tui.WarningStyle.Render("  " + env + " is not set; export it before running analyze."))
	}
	return nil
}

// saveSetup merges the choice into the YAML file at path.
func saveSetup(path, provider, model string) error {
	doc := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("existing config %s is not valid YAML: %w", path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	section, _ := doc["llm"].(map[string]any)
	if section == nil {
		section = map[string]any{}
	}
	section["provider"] = provider
	if model == "" {
		delete(section, "model")
	} else {
		section["model"] = model
	}
	doc["llm"] = section

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func keyEnvFor(provider string) string {
	switch provider {
	case llm.ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case llm.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case llm.ProviderGemini:
		return "GEMINI_API_KEY"
	}
	return ""
}

// Bubble Tea model for the setup wizard

const (
	stepProvider = iota
	stepModel
)

type setupModel struct {
	step      int
	providers list.Model
	models    list.Model
	provider  string
	model     string
	cancelled bool
	width     int
	height    int
}

type choiceItem struct {
	id    string
	name  string
	desc  string
	ready bool
}

func (c choiceItem) Title() string {
	if c.ready {
		return c.name + " ✓"
	}
	return c.name
}
func (c choiceItem) Description() string { return c.desc }
func (c choiceItem) FilterValue() string { return c.name }

var providerDescriptions = map[string]string{
	llm.ProviderAuto:       "Detect the best available backend at run time",
	llm.ProviderOpenRouter: "Any model through OpenRouter (OPENROUTER_API_KEY)",
	llm.ProviderAnthropic:  "Anthropic Messages API (ANTHROPIC_API_KEY)",
	llm.ProviderClaudeCLI:  "Local Claude Code CLI",
	llm.ProviderCodexCLI:   "Local Codex CLI",
	llm.ProviderGemini:     "Google Gemini API (GEMINI_API_KEY)",
}

func newChoiceList(items []list.Item, title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(tui.ColorAccent).BorderForeground(tui.ColorAccent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(tui.ColorMuted)

	l := list.New(items, delegate, 60, 14)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = tui.TitleStyle
	return l
}

func newSetupModel(available []string) setupModel {
	ready := make(map[string]bool, len(available))
	for _, p := range available {
		ready[p] = true
	}

	items := make([]list.Item, len(llm.Providers))
	for i, p := range llm.Providers {
		items[i] = choiceItem{id: p, name: p, desc: providerDescriptions[p], ready: ready[p]}
	}

	return setupModel{
		step:      stepProvider,
		providers: newChoiceList(items, "Select LLM Provider"),
	}
}

func modelItems(provider string) []list.Item {
	infos := llm.ModelsFor(provider)
	items := make([]list.Item, 0, len(infos)+1)
	items = append(items, choiceItem{name: "Provider default", desc: "Let the adapter choose"})
	for _, m := range infos {
		items = append(items, choiceItem{id: m.ID, name: m.Name, desc: m.Description})
	}
	return items
}

func (m setupModel) Init() tea.Cmd {
	return nil
}

func (m setupModel) current() *list.Model {
	if m.step == stepModel {
		return &m.models
	}
	return &m.providers
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.providers.SetSize(msg.Width, msg.Height-4)
		if m.step == stepModel {
			m.models.SetSize(msg.Width, msg.Height-4)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if m.step == stepProvider {
				item, ok := m.providers.SelectedItem().(choiceItem)
				if !ok {
					return m, nil
				}
				m.provider = item.id
				if item.id == llm.ProviderAuto {
					return m, tea.Quit
				}
				m.models = newChoiceList(modelItems(item.id), "Select Model for "+item.id)
				if m.width > 0 {
					m.models.SetSize(m.width, m.height-4)
				}
				m.step = stepModel
				return m, nil
			}
			if item, ok := m.models.SelectedItem().(choiceItem); ok {
				m.model = item.id
			}
			return m, tea.Quit

		case "left", "h":
			if m.step == stepModel {
				m.step = stepProvider
				m.model = ""
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.step == stepModel {
		m.models, cmd = m.models.Update(msg)
	} else {
		m.providers, cmd = m.providers.Update(msg)
	}
	return m, cmd
}

func (m setupModel) View() string {
	if m.cancelled {
		return ""
	}

	steps := []string{"Provider", "Model"}
	progress := "\n  "
	for i, s := range steps {
		if i == m.step {
			progress += tui.SelectedStyle.Render(fmt.Sprintf("[%s]", s))
		} else if i < m.step {
			progress += tui.SuccessStyle.Render(fmt.Sprintf("✓ %s", s))
		} else {
			progress += tui.UnselectedStyle.Render(fmt.Sprintf("○ %s", s))
		}
		if i < len(steps)-1 {
			progress += " → "
		}
	}
	progress += "\n\n"

	help := tui.HelpStyle.Render("\n  ↑/↓: navigate • enter: select • ←: back • q: quit • ✓ = detected")

	return progress + m.current().View() + help
}
