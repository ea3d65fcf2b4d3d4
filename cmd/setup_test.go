package cmd

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dhabedank/strategem/internal/llm"
)

func TestSaveSetup_KeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".strategem.yaml")
	existing := "storage:\n  driver: sqlite\nllm:\n  temperature: 0.5\n  model: old\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0600))

	require.NoError(t, saveSetup(path, llm.ProviderOpenRouter, "anthropic/claude-sonnet-4.5"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Equal(t, "sqlite", doc["storage"]["driver"])
	assert.Equal(t, 0.5, doc["llm"]["temperature"])
	assert.Equal(t, llm.ProviderOpenRouter, doc["llm"]["provider"])
	assert.Equal(t, "anthropic/claude-sonnet-4.5", doc["llm"]["model"])
}

func TestSaveSetup_DefaultModelClearsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".strategem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: old\n"), 0600))

	require.NoError(t, saveSetup(path, llm.ProviderAuto, ""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "old")
	assert.Contains(t, string(data), "provider: auto")
}

func TestSaveSetup_InvalidExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".strategem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0600))

	assert.Error(t, saveSetup(path, llm.ProviderGemini, ""))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m setupModel, msgs ...tea.Msg) setupModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(setupModel)
	}
	return m
}

func TestSetupModel_ProviderThenModel(t *testing.T) {
	m := newSetupModel([]string{llm.ProviderOpenRouter})

	// Providers are listed in llm.Providers order; index 1 is openrouter.
	m = send(m, key("down"), key("enter"))
	require.Equal(t, stepModel, m.step)
	assert.Equal(t, llm.ProviderOpenRouter, m.provider)

	m = send(m, key("down"), key("enter"))
	assert.Equal(t, llm.ModelsFor(llm.ProviderOpenRouter)[0].ID, m.model)
	assert.False(t, m.cancelled)
}

func TestSetupModel_AutoSkipsModel(t *testing.T) {
	m := newSetupModel(nil)

	m = send(m, key("enter"))

	assert.Equal(t, llm.ProviderAuto, m.provider)
	assert.Equal(t, stepProvider, m.step)
	assert.Empty(t, m.model)
}

func TestSetupModel_BackAndQuit(t *testing.T) {
	m := newSetupModel(nil)

	m = send(m, key("down"), key("enter"), key("left"))
	assert.Equal(t, stepProvider, m.step)

	m = send(m, key("q"))
	assert.True(t, m.cancelled)
	assert.Empty(t, m.View())
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cmd := &cobra.Command{Use: "test"}
	addLLMFlags(cmd)
	addConfigFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--llm", "gemini", "--model", "gemini-2.5-pro"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
}

func TestLoadConfig_UnsetFlagsKeepConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".strategem.yaml", []byte("llm:\n  provider: claude-cli\n"), 0600))

	cmd := &cobra.Command{Use: "test"}
	addLLMFlags(cmd)
	addConfigFlags(cmd)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderClaudeCLI, cfg.LLM.Provider)
}
