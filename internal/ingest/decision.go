package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DecisionType says how the options of a decision are examined.
type DecisionType string

const (
	DecisionExplore    DecisionType = "explore"
	DecisionCompare    DecisionType = "compare"
	DecisionStressTest DecisionType = "stress_test"
)

// DecisionTypes lists the accepted decision types.
var DecisionTypes = []DecisionType{DecisionExplore, DecisionCompare, DecisionStressTest}

// FocusStatus records where a context's decision focus came from.
type FocusStatus string

const (
	FocusExplicit     FocusStatus = "explicit"
	FocusDerived      FocusStatus = "derived"
	FocusInsufficient FocusStatus = "insufficient"
)

const (
	minFocusOptions   = 2
	maxDerivedOptions = 5
	maxBulletOptions  = 10
	minDeriveChars    = 100
)

// ErrInvalidDecisionFocus is returned for an unusable explicit focus.
var ErrInvalidDecisionFocus = errors.New("invalid decision focus")

// DecisionFocus names the decision an analysis serves and the options
// under consideration. Frameworks describe how the structure bears on each
// option; they never rank them.
type DecisionFocus struct {
	Question string       `json:"decision_question"`
	Type     DecisionType `json:"decision_type"`
	Options  []string     `json:"options"`
}

// ParseDecisionType accepts one of DecisionTypes. Empty means explore.
func ParseDecisionType(s string) (DecisionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DecisionExplore, nil
	}
	for _, t := range DecisionTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown decision type %q (want explore, compare or stress_test)", ErrInvalidDecisionFocus, s)
}

// NewDecisionFocus builds and validates an explicit focus.
func NewDecisionFocus(question, decisionType string, options []string) (*DecisionFocus, error) {
	t, err := ParseDecisionType(decisionType)
	if err != nil {
		return nil, err
	}
	f := &DecisionFocus{Question: strings.TrimSpace(question), Type: t, Options: cleanOptions(options)}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the question is set and at least two options are named.
func (f *DecisionFocus) Validate() error {
	if f.Question == "" {
		return fmt.Errorf("%w: decision question is empty", ErrInvalidDecisionFocus)
	}
	if len(f.Options) < minFocusOptions {
		return fmt.Errorf("%w: at least %d options required, got %d", ErrInvalidDecisionFocus, minFocusOptions, len(f.Options))
	}
	return nil
}

func cleanOptions(options []string) []string {
	out := make([]string, 0, len(options))
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

var (
	questionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)should\s+(?:we|i)\s+(.+?)[?？.\n]`),
		regexp.MustCompile(`(?i)(?:decide|choose|select|pick)\s+between\s+([^\n]+)`),
		regexp.MustCompile(`(?i)considering\s+(.+?)\s+vs\.?\s+[^\n]+`),
		regexp.MustCompile(`(?i)(?:compare|evaluate|assess)\s+([^\n]+)`),
		regexp.MustCompile(`(?i)what\s+(?:to|should)\s+(?:we|i)\s+do\s+(?:about|with)?\s*(.+?)[?？.\n]`),
	}

	labelledOption = regexp.MustCompile(`(?im)\b(?:option|choice|alternative|path)\s+\d+[:\s]+(.+?)$`)
	contrastOption = regexp.MustCompile(`(?i)(?:\bvs\.?|\bversus)\s*([A-Za-z][^.?!\n]+)`)
	numberedOption = regexp.MustCompile(`(?m)^\s*\d+\.\s*([^.?!\n]+)`)
	bulletOption   = regexp.MustCompile(`(?m)^\s*[-*]\s+([^.?!\n]{10,})`)
	whitespace     = regexp.MustCompile(`\s+`)
)

var (
	decisionWords  = []string{"should", "decide", "choose", "select"}
	goalWords      = []string{"increase", "reduce", "improve", "achieve"}
	approachWords  = []string{"alternative", "approach", "option", "strategy"}
	stressWords    = []string{"stress test", "scenario", "what if", "if we", "assuming"}
	comparingWords = []string{"vs", "versus", "compare", "between"}
)

// DeriveDecisionFocus infers a focus from the context's material when none
// was given. It returns nil unless both a decision question and at least
// two candidate options can be found.
func DeriveDecisionFocus(pc *ProblemContext) *DecisionFocus {
	text := focusText(pc)
	if len(text) < minDeriveChars {
		return nil
	}
	question := deriveQuestion(text, pc.ProblemStatement)
	if question == "" {
		return nil
	}
	options := deriveOptions(text, pc.Objectives)
	if len(options) < minFocusOptions {
		return nil
	}
	return &DecisionFocus{
		Question: question,
		Type:     inferDecisionType(question, options),
		Options:  options,
	}
}

func focusText(pc *ProblemContext) string {
	parts := make([]string, 0, len(pc.Materials)+len(pc.Objectives)+1)
	for _, m := range pc.Materials {
		parts = append(parts, m.Content)
	}
	if pc.ProblemStatement != DefaultProblemStatement {
		parts = append(parts, pc.ProblemStatement)
	}
	parts = append(parts, pc.Objectives...)
	return strings.Join(parts, " ")
}

func deriveQuestion(text, statement string) string {
	for _, p := range questionPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return asQuestion(m[1])
		}
	}
	if statement != DefaultProblemStatement && containsAny(strings.ToLower(statement), decisionWords) {
		return asQuestion(statement)
	}
	return ""
}

func asQuestion(s string) string {
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.Trim(s, " .,?!")
	if s == "" {
		return ""
	}
	return s + "?"
}

func deriveOptions(text string, objectives []string) []string {
	found := make(map[string]bool)
	add := func(s string, minLen int) {
		s = strings.TrimSpace(s)
		if len(s) > minLen {
			found[s] = true
		}
	}

	for _, m := range labelledOption.FindAllStringSubmatch(text, -1) {
		add(m[1], 3)
	}
	for _, m := range contrastOption.FindAllStringSubmatch(text, -1) {
		add(m[1], 3)
	}
	for _, obj := range objectives {
		lower := strings.ToLower(obj)
		if containsAny(lower, goalWords) {
			continue
		}
		if containsAny(lower, approachWords) {
			add(obj, 0)
		}
	}
	for _, m := range numberedOption.FindAllStringSubmatch(text, -1) {
		add(m[1], 5)
	}
	bullets := bulletOption.FindAllStringSubmatch(text, maxBulletOptions)
	for _, m := range bullets {
		add(m[1], 0)
	}

	options := make([]string, 0, len(found))
	for o := range found {
		options = append(options, o)
	}
	// Longest first; ties alphabetical so the result is stable.
	sort.Slice(options, func(i, j int) bool {
		if len(options[i]) != len(options[j]) {
			return len(options[i]) > len(options[j])
		}
		return options[i] < options[j]
	})
	if len(options) > maxDerivedOptions {
		options = options[:maxDerivedOptions]
	}
	return options
}

func inferDecisionType(question string, options []string) DecisionType {
	lower := strings.ToLower(question)
	switch {
	case containsAny(lower, stressWords):
		return DecisionStressTest
	case containsAny(lower, comparingWords):
		return DecisionCompare
	case len(options) <= 3:
		return DecisionCompare
	}
	return DecisionExplore
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
