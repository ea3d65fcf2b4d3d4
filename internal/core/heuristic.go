package core

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxLabelChars = 60
	maxLabelWords = 8
)

var (
	headingPrefix = regexp.MustCompile(`^#{1,6}\s*`)
	numberPrefix  = regexp.MustCompile(`^\d{1,2}[.)]\s+`)
	labelPattern  = regexp.MustCompile(`^(?:\*\*)?(\p{L}[^:]*?)(?:\*\*)?\s*:(?:\*\*)?\s*(.*)$`)
	boldLine      = regexp.MustCompile(`^\*\*[^*]+\*\*:?$`)
	bulletPattern = regexp.MustCompile(`^(?:[-*+•]|\d{1,3}[.)])\s+(.*)$`)
)

// parseHeuristic scans line by line for "Label:" fields. Unindented label
// lines (optionally headings, numbered or bold) open a field; indented or
// bulleted lines accumulate into it; unindented prose closes it.
func parseHeuristic(text string) (map[string]any, bool) {
	s := &lineScanner{fields: make(map[string]any)}
	for _, line := range strings.Split(text, "\n") {
		s.feed(line)
	}
	s.flush()
	return s.fields, len(s.fields) > 0
}

type lineScanner struct {
	fields map[string]any
	cur    *heuristicField
}

func (s *lineScanner) feed(raw string) {
	line := strings.TrimRight(raw, " \t\r")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "```") {
		return
	}

	indent := indentWidth(line)
	if indent == 0 {
		if label, value, heading, ok := matchLabel(trimmed); ok {
			s.flush()
			s.cur = &heuristicField{label: label, inline: value, heading: heading}
			return
		}
		if s.cur == nil {
			return
		}
		if item, ok := matchBullet(trimmed); ok {
			s.cur.closeSub()
			s.cur.items = append(s.cur.items, item)
			return
		}
		// A heading owns the paragraphs beneath it.
		if s.cur.heading {
			s.cur.text = append(s.cur.text, cleanValue(trimmed))
			return
		}
		s.flush()
		return
	}

	if s.cur != nil {
		s.cur.addIndented(indent, trimmed)
	}
}

func (s *lineScanner) flush() {
	if s.cur == nil {
		return
	}
	if _, exists := s.fields[s.cur.label]; !exists {
		s.fields[s.cur.label] = s.cur.value()
	}
	s.cur = nil
}

type heuristicSub struct {
	key    string
	inline string
	items  []any
	indent int
}

func (sf *heuristicSub) value() any {
	if len(sf.items) == 0 {
		return sf.inline
	}
	if sf.inline == "" {
		return sf.items
	}
	return append([]any{sf.inline}, sf.items...)
}

type heuristicField struct {
	label   string
	inline  string
	heading bool
	items   []any
	text    []string
	subs    []*heuristicSub
	open    *heuristicSub
}

func (f *heuristicField) closeSub() {
	f.open = nil
}

func (f *heuristicField) addIndented(indent int, line string) {
	if item, ok := matchBullet(line); ok {
		if f.open != nil && indent >= f.open.indent {
			f.open.items = append(f.open.items, item)
			return
		}
		f.closeSub()
		f.items = append(f.items, item)
		return
	}

	if m := labelPattern.FindStringSubmatch(line); m != nil {
		key := cleanLabel(m[1])
		if validLabel(key) {
			sub := &heuristicSub{key: key, inline: cleanValue(m[2]), indent: indent}
			f.subs = append(f.subs, sub)
			f.open = sub
			return
		}
	}

	if f.open != nil && len(f.open.items) == 0 && indent > f.open.indent {
		f.open.inline = joinText(f.open.inline, cleanValue(line))
		return
	}
	f.text = append(f.text, cleanValue(line))
}

func (f *heuristicField) looseValue() any {
	if len(f.items) > 0 {
		var items []any
		if f.inline != "" {
			items = append(items, f.inline)
		}
		items = append(items, f.items...)
		if len(f.text) > 0 {
			items = append(items, strings.Join(f.text, " "))
		}
		return items
	}
	return joinText(f.inline, strings.Join(f.text, " "))
}

func (f *heuristicField) value() any {
	if len(f.subs) == 0 {
		return f.looseValue()
	}
	m := make(map[string]any, len(f.subs)+1)
	for _, sub := range f.subs {
		if _, exists := m[sub.key]; !exists {
			m[sub.key] = sub.value()
		}
	}
	if loose := f.looseValue(); loose != "" {
		if _, exists := m["details"]; !exists {
			m["details"] = loose
		}
	}
	return m
}

// matchLabel recognizes a top-level field line and returns its label, any
// inline value, and whether it was a markdown heading.
func matchLabel(line string) (string, string, bool, bool) {
	body := line
	heading := false
	if loc := headingPrefix.FindStringIndex(body); loc != nil {
		body = body[loc[1]:]
		heading = true
	}
	body = numberPrefix.ReplaceAllString(body, "")

	if m := labelPattern.FindStringSubmatch(body); m != nil {
		label := cleanLabel(m[1])
		value := cleanValue(m[2])
		if validLabel(label) && !strings.HasPrefix(value, "//") {
			return label, value, heading, true
		}
	}
	if heading || boldLine.MatchString(body) {
		label := cleanLabel(body)
		if validLabel(label) {
			return label, "", heading, true
		}
	}
	return "", "", false, false
}

func matchBullet(line string) (string, bool) {
	m := bulletPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return cleanValue(m[1]), true
}

func cleanLabel(s string) string {
	s = boldPattern.ReplaceAllString(s, "$1")
	return strings.Trim(s, " \t*#:_")
}

func cleanValue(s string) string {
	s = boldPattern.ReplaceAllString(s, "$1")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*"))
}

func validLabel(label string) bool {
	if label == "" || len(label) > maxLabelChars {
		return false
	}
	if len(strings.Fields(label)) > maxLabelWords {
		return false
	}
	r, _ := utf8.DecodeRuneInString(label)
	return unicode.IsLetter(r)
}

func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
