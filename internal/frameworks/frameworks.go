// Package frameworks loads analytical framework definitions and their
// prompts into a registry.
package frameworks

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dhabedank/strategem/internal/core"
)

//go:embed frameworks.yaml prompts/*.txt
var builtin embed.FS

const catalogFile = "frameworks.yaml"

// Catalog is a set of framework specs plus the shared system prompt.
type Catalog struct {
	SystemPrompt string
	Frameworks   []core.FrameworkSpec
}

type catalogData struct {
	SystemPrompt     string           `yaml:"system_prompt"`
	SystemPromptFile string           `yaml:"system_prompt_file"`
	Frameworks       []frameworkEntry `yaml:"frameworks"`
}

type frameworkEntry struct {
	core.FrameworkSpec `yaml:",inline"`
	PromptFile         string `yaml:"prompt_file"`
}

// Builtin returns the frameworks shipped with the binary.
func Builtin() (*Catalog, error) {
	return parseCatalog(builtin, catalogFile)
}

// LoadFile reads a catalog from disk. Prompt files are resolved relative
// to the catalog's directory.
func LoadFile(path string) (*Catalog, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return parseCatalog(os.DirFS(dir), name)
}

// Load returns the builtin catalog extended by the catalog at path, if any.
// Frameworks from path are appended; a system prompt in path replaces the
// builtin one.
func Load(path string) (*Catalog, error) {
	catalog, err := Builtin()
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin frameworks: %w", err)
	}
	if path == "" {
		return catalog, nil
	}

	extra, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load frameworks file %s: %w", path, err)
	}
	if extra.SystemPrompt != "" {
		catalog.SystemPrompt = extra.SystemPrompt
	}
	catalog.Frameworks = append(catalog.Frameworks, extra.Frameworks...)
	return catalog, nil
}

// Registry builds a registry holding every framework in the catalog.
func (c *Catalog) Registry() (*core.Registry, error) {
	reg := core.NewRegistry()
	for _, spec := range c.Frameworks {
		if err := reg.Register(spec); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func parseCatalog(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var raw catalogData
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	catalog := &Catalog{SystemPrompt: raw.SystemPrompt}
	if raw.SystemPromptFile != "" {
		prompt, err := fs.ReadFile(fsys, raw.SystemPromptFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read system prompt: %w", err)
		}
		catalog.SystemPrompt = string(prompt)
	}

	for _, entry := range raw.Frameworks {
		spec := entry.FrameworkSpec
		if entry.PromptFile != "" {
			prompt, err := fs.ReadFile(fsys, entry.PromptFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read prompt for %s: %w", spec.Name, err)
			}
			spec.PromptTemplate = string(prompt)
		}
		catalog.Frameworks = append(catalog.Frameworks, spec)
	}
	return catalog, nil
}
