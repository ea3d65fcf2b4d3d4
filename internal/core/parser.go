package core

import (
	"encoding/json"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// MaxExcerptBytes bounds the raw text kept on a Failed parse.
const MaxExcerptBytes = 500

// maxBraceCandidates bounds how many balanced {...} spans strict JSON tries.
const maxBraceCandidates = 32

var (
	fencedBlockPattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)```")
	boldPattern        = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

type strategyFunc func(text string) (map[string]any, bool)

type parseStrategy struct {
	id Strategy
	fn strategyFunc
}

// strategies is the fallback chain, tried in order.
var strategies = []parseStrategy{
	{StrategyStrictJSON, parseStrictJSON},
	{StrategyRelaxedYAML, parseRelaxedYAML},
	{StrategyHeuristic, parseHeuristic},
}

// ParseResponse recovers a record matching spec from raw model output.
//
// The first strategy whose mapping carries every required key wins. A
// mapping carrying only some required keys is kept as a Degraded
// candidate (most keys, then earliest strategy). If no strategy recovers
// any required key the result is Failed. ParseResponse never panics and
// depends only on its inputs.
func ParseResponse(raw RawResponse, spec FrameworkSpec) ParseResult {
	required := spec.RequiredKeys()

	var (
		attempted []Strategy
		best      *ParseResult
		bestCount int
	)

	for _, s := range strategies {
		attempted = append(attempted, s.id)

		m, ok := runStrategy(s.fn, raw.Text)
		if !ok {
			continue
		}
		record := NormalizeRecord(m)
		missing := missingKeys(record, required)

		if len(missing) == 0 {
			return ParseResult{
				Status:    StatusSucceeded,
				Record:    record,
				Strategy:  s.id,
				Attempted: attempted,
			}
		}

		present := len(required) - len(missing)
		if present > bestCount {
			bestCount = present
			best = &ParseResult{
				Status:   StatusDegraded,
				Record:   record,
				Strategy: s.id,
				Missing:  missing,
			}
		}
	}

	if best != nil {
		best.Attempted = attempted
		return *best
	}

	return ParseResult{
		Status:     StatusFailed,
		Attempted:  attempted,
		RawExcerpt: truncate(raw.Text, MaxExcerptBytes),
	}
}

// runStrategy confines a strategy: a panic or empty mapping counts as a miss.
func runStrategy(fn strategyFunc, text string) (m map[string]any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m, ok = nil, false
		}
	}()
	m, ok = fn(text)
	if ok && len(m) == 0 {
		return nil, false
	}
	return m, ok
}

func missingKeys(record Record, required []string) []string {
	var missing []string
	for _, key := range required {
		if _, ok := record[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// parseStrictJSON tries fenced blocks, then the whole text, then balanced
// brace spans.
func parseStrictJSON(text string) (map[string]any, bool) {
	for _, block := range fencedBlocks(text) {
		if m, ok := decodeJSONObject(block); ok {
			return m, true
		}
	}
	if m, ok := decodeJSONObject(text); ok {
		return m, true
	}
	for _, candidate := range braceCandidates(text, maxBraceCandidates) {
		if m, ok := decodeJSONObject(candidate); ok {
			return m, true
		}
	}
	return nil, false
}

func fencedBlocks(text string) []string {
	matches := fencedBlockPattern.FindAllStringSubmatch(text, -1)
	blocks := make([]string, 0, len(matches))
	for _, match := range matches {
		if block := strings.TrimSpace(match[1]); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func decodeJSONObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// braceCandidates returns balanced {...} spans in order of their opening
// brace, found in a single pass. Quotes are only tracked inside a span so
// apostrophes and stray quotes in prose do not hide braces.
func braceCandidates(text string, limit int) []string {
	type span struct{ start, end int }
	var (
		stack    []int
		spans    []span
		inString bool
		escaped  bool
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if len(stack) > 0 {
				inString = true
			}
		case '{':
			stack = append(stack, i)
		case '}':
			if len(stack) == 0 {
				continue
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			spans = append(spans, span{start, i + 1})
		}
	}

	sort.SliceStable(spans, func(a, b int) bool { return spans[a].start < spans[b].start })
	if len(spans) > limit {
		spans = spans[:limit]
	}
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = text[s.start:s.end]
	}
	return out
}

// parseRelaxedYAML parses fenced blocks and then the cleaned full text as
// YAML. Only mapping documents count.
func parseRelaxedYAML(text string) (map[string]any, bool) {
	candidates := fencedBlocks(text)
	candidates = append(candidates, cleanForYAML(text))
	for _, candidate := range candidates {
		var v any
		if err := yaml.Unmarshal([]byte(candidate), &v); err != nil {
			continue
		}
		switch m := v.(type) {
		case map[string]any:
			return m, true
		case map[any]any:
			converted := make(map[string]any, len(m))
			for k, inner := range m {
				if ks, ok := k.(string); ok {
					converted[ks] = inner
				}
			}
			return converted, true
		}
	}
	return nil, false
}

// cleanForYAML drops fence lines and markdown bold markers outside code.
func cleanForYAML(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	inBlock := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inBlock = !inBlock
			continue
		}
		if !inBlock {
			line = boldPattern.ReplaceAllString(line, "$1")
		}
		cleaned = append(cleaned, strings.TrimRight(line, " \t\r"))
	}
	return strings.Join(cleaned, "\n")
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("...")
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
