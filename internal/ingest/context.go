// Package ingest turns user-provided material into a problem context.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultTitle            = "Untitled Analysis"
	DefaultProblemStatement = "Problem context provided for analysis"

	SourceText      = "text"
	SourceDocument  = "document"
	SourceComposite = "composite"
	SourceUnknown   = "unknown"
)

// ErrFileNotFound is returned when a material file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrEmptyContext is returned when no usable material was provided.
var ErrEmptyContext = errors.New("problem context is empty")

// Material is one piece of provided context.
type Material struct {
	Type    string `json:"material_type"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// ProblemContext is the subject of an analysis.
type ProblemContext struct {
	Title               string     `json:"title"`
	ProblemStatement    string     `json:"problem_statement"`
	Objectives          []string   `json:"objectives"`
	Constraints         []string   `json:"constraints"`
	DeclaredAssumptions []string   `json:"declared_assumptions"`
	Materials           []Material `json:"provided_materials"`
	RawContent          string     `json:"raw_content"`
	StructuredContent   string     `json:"structured_content"`
	SourceType          string     `json:"source_type"`

	DecisionFocus *DecisionFocus `json:"decision_focus,omitempty"`
	FocusStatus   FocusStatus    `json:"decision_focus_status,omitempty"`
}

// Options carries the optional framing of a problem context.
type Options struct {
	Title               string
	ProblemStatement    string
	Objectives          []string
	Constraints         []string
	DeclaredAssumptions []string

	// DecisionFocus is used as given. When nil one is derived from the
	// material if possible.
	DecisionFocus *DecisionFocus
}

// FromText builds a context from directly supplied text.
func FromText(text string, opts Options) (*ProblemContext, error) {
	text = sanitize(text)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContext
	}
	material := Material{Type: "text", Content: text, Source: "direct_input"}
	return build(opts, DefaultTitle, SourceText, text, material), nil
}

// FromFile builds a context from a file on disk.
func FromFile(path string, opts Options) (*ProblemContext, error) {
	material, err := FileMaterial(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(material.Content) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContext, path)
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return build(opts, title, SourceDocument, material.Content, material), nil
}

// Compose builds a context from several materials.
func Compose(opts Options, materials ...Material) (*ProblemContext, error) {
	if len(materials) == 0 {
		return nil, ErrEmptyContext
	}
	raw := make([]string, len(materials))
	for i, m := range materials {
		raw[i] = m.Content
	}
	return build(opts, DefaultTitle, SourceComposite, strings.Join(raw, "\n\n"), materials...), nil
}

// TextMaterial wraps inline text as a material.
func TextMaterial(text string) Material {
	return Material{Type: "text", Content: sanitize(text), Source: "input"}
}

// FileMaterial reads a file as a material. Invalid UTF-8 is dropped.
func FileMaterial(path string) (Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Material{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Material{}, fmt.Errorf("failed to read file: %w", err)
	}
	return Material{Type: "document", Content: sanitize(string(data)), Source: path}, nil
}

func build(opts Options, defaultTitle, sourceType, raw string, materials ...Material) *ProblemContext {
	pc := &ProblemContext{
		Title:               firstNonEmpty(opts.Title, defaultTitle),
		ProblemStatement:    firstNonEmpty(opts.ProblemStatement, DefaultProblemStatement),
		Objectives:          nonNil(opts.Objectives),
		Constraints:         nonNil(opts.Constraints),
		DeclaredAssumptions: nonNil(opts.DeclaredAssumptions),
		Materials:           materials,
		RawContent:          raw,
		SourceType:          sourceType,
	}
	ResolveFocus(pc, opts.DecisionFocus)
	Structure(pc)
	return pc
}

// Structure assembles the text handed to every framework.
func Structure(pc *ProblemContext) {
	if len(pc.Materials) == 0 {
		pc.StructuredContent = pc.RawContent
		return
	}

	parts := []string{"PROBLEM STATEMENT: " + pc.ProblemStatement}
	if len(pc.Objectives) > 0 {
		parts = append(parts, "OBJECTIVES: "+strings.Join(pc.Objectives, ", "))
	}
	if len(pc.Constraints) > 0 {
		parts = append(parts, "CONSTRAINTS: "+strings.Join(pc.Constraints, ", "))
	}
	if len(pc.DeclaredAssumptions) > 0 {
		parts = append(parts, "DECLARED ASSUMPTIONS: "+strings.Join(pc.DeclaredAssumptions, ", "))
	}
	if f := pc.DecisionFocus; f != nil {
		parts = append(parts,
			fmt.Sprintf("DECISION FOCUS (%s): %s", pc.FocusStatus, f.Question),
			"DECISION TYPE: "+string(f.Type),
			"OPTIONS UNDER CONSIDERATION: "+strings.Join(f.Options, "; "),
		)
	}
	for i, m := range pc.Materials {
		parts = append(parts, fmt.Sprintf("PROVIDED MATERIAL [%d] (%s):\n%s", i+1, m.Type, m.Content))
	}
	pc.StructuredContent = strings.Join(parts, "\n\n")
}

// ResolveFocus sets the context's decision focus: explicit when given,
// otherwise derived from the material, otherwise insufficient.
func ResolveFocus(pc *ProblemContext, explicit *DecisionFocus) {
	if explicit != nil {
		pc.DecisionFocus, pc.FocusStatus = explicit, FocusExplicit
		return
	}
	if f := DeriveDecisionFocus(pc); f != nil {
		pc.DecisionFocus, pc.FocusStatus = f, FocusDerived
		return
	}
	pc.DecisionFocus, pc.FocusStatus = nil, FocusInsufficient
}

// ApplyDefaults fills fields missing from older stored contexts.
func ApplyDefaults(pc *ProblemContext) {
	pc.Title = firstNonEmpty(pc.Title, DefaultTitle)
	pc.ProblemStatement = firstNonEmpty(pc.ProblemStatement, DefaultProblemStatement)
	pc.SourceType = firstNonEmpty(pc.SourceType, SourceUnknown)
	pc.Objectives = nonNil(pc.Objectives)
	pc.Constraints = nonNil(pc.Constraints)
	pc.DeclaredAssumptions = nonNil(pc.DeclaredAssumptions)
	if pc.Materials == nil {
		pc.Materials = []Material{}
	}
	if pc.StructuredContent == "" {
		pc.StructuredContent = pc.RawContent
	}
	if pc.FocusStatus == "" {
		pc.FocusStatus = FocusInsufficient
		if pc.DecisionFocus != nil {
			pc.FocusStatus = FocusExplicit
		}
	}
}

// Summary returns the first n bytes of the raw content.
func (pc *ProblemContext) Summary(n int) string {
	content := strings.TrimSpace(pc.RawContent)
	if len(content) <= n {
		return content
	}
	return strings.ToValidUTF8(content[:n], "") + "..."
}

// Source describes where the material came from.
func (pc *ProblemContext) Source() string {
	if len(pc.Materials) == 1 && pc.Materials[0].Source != "" {
		return pc.Materials[0].Source
	}
	return pc.SourceType
}

func sanitize(s string) string {
	return strings.ToValidUTF8(s, "")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
