package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// FieldKind describes the expected shape of a framework field value.
type FieldKind string

const (
	KindText    FieldKind = "text"
	KindList    FieldKind = "list"
	KindMapping FieldKind = "mapping"
)

// FieldSpec describes one field an analytical framework must produce.
type FieldSpec struct {
	Key         string    `json:"key" yaml:"key"`
	Title       string    `json:"title" yaml:"title"`
	Kind        FieldKind `json:"kind" yaml:"kind"`
	Required    bool      `json:"required" yaml:"required"`
	Description string    `json:"description,omitempty" yaml:"description"`
}

// FrameworkSpec is the schema and prompt for one analytical framework.
// Values are immutable once registered; the registry hands out copies.
type FrameworkSpec struct {
	Name           string      `json:"name" yaml:"name"`
	Title          string      `json:"title" yaml:"title"`
	Lens           string      `json:"lens" yaml:"lens"`
	Description    string      `json:"description" yaml:"description"`
	PromptTemplate string      `json:"-" yaml:"prompt"`
	Fields         []FieldSpec `json:"fields" yaml:"fields"`
}

// RequiredKeys returns the normalized keys of all required fields in
// declaration order.
func (s FrameworkSpec) RequiredKeys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			keys = append(keys, NormalizeKey(f.Key))
		}
	}
	return keys
}

// Field looks up a field by its normalized key.
func (s FrameworkSpec) Field(key string) (FieldSpec, bool) {
	key = NormalizeKey(key)
	for _, f := range s.Fields {
		if NormalizeKey(f.Key) == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func (s FrameworkSpec) clone() FrameworkSpec {
	c := s
	c.Fields = append([]FieldSpec(nil), s.Fields...)
	return c
}

// RawResponse is unmodified model output tagged with the framework it answers.
type RawResponse struct {
	Framework string
	Text      string
}

// Record maps normalized field names to values. Values are string, []any
// (of strings or mappings) or map[string]any.
type Record map[string]any

// Strategy identifies a parsing strategy in the fallback chain.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyStrictJSON
	StrategyRelaxedYAML
	StrategyHeuristic
)

func (s Strategy) String() string {
	switch s {
	case StrategyStrictJSON:
		return "strict_json"
	case StrategyRelaxedYAML:
		return "relaxed_yaml"
	case StrategyHeuristic:
		return "heuristic"
	default:
		return "none"
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(b []byte) error {
	switch string(b) {
	case "strict_json":
		*s = StrategyStrictJSON
	case "relaxed_yaml":
		*s = StrategyRelaxedYAML
	case "heuristic":
		*s = StrategyHeuristic
	case "none", "":
		*s = StrategyNone
	default:
		return fmt.Errorf("unknown parsing strategy: %s", b)
	}
	return nil
}

// Status is the terminal classification of a parse or framework run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusDegraded  Status = "degraded"
	StatusFailed    Status = "failed"
)

// Rank orders statuses so that Succeeded > Degraded > Failed.
func (s Status) Rank() int {
	switch s {
	case StatusSucceeded:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// FailureReason explains a Failed outcome.
type FailureReason string

const (
	ReasonNone                 FailureReason = ""
	ReasonInferenceUnavailable FailureReason = "inference_unavailable"
	ReasonUnparseable          FailureReason = "unparseable"
)

// ParseResult is the output of the response parser for one raw response.
type ParseResult struct {
	Status     Status
	Record     Record
	Strategy   Strategy
	Missing    []string
	Attempted  []Strategy
	RawExcerpt string
}

// Outcome is the result of running one framework.
type Outcome struct {
	Framework     string        `json:"framework"`
	Title         string        `json:"title"`
	Status        Status        `json:"status"`
	Record        Record        `json:"record,omitempty"`
	Strategy      Strategy      `json:"strategy"`
	Missing       []string      `json:"missing,omitempty"`
	Attempted     []Strategy    `json:"attempted,omitempty"`
	Reason        FailureReason `json:"reason,omitempty"`
	Detail        string        `json:"detail,omitempty"`
	RawExcerpt    string        `json:"raw_excerpt,omitempty"`
	Calls         int           `json:"calls"`
	ParseAttempts int           `json:"parse_attempts"`
	InputChars    int           `json:"input_chars"`
	OutputChars   int           `json:"output_chars"`
	Duration      time.Duration `json:"duration"`
}

// ResultSet is the ordered collection of outcomes for one analysis run.
type ResultSet struct {
	Outcomes []Outcome `json:"outcomes"`
}

// Get returns the outcome for a framework by name.
func (r *ResultSet) Get(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Framework == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Names returns framework names in run order.
func (r *ResultSet) Names() []string {
	names := make([]string, len(r.Outcomes))
	for i, o := range r.Outcomes {
		names[i] = o.Framework
	}
	return names
}

// Counts tallies outcomes by status.
func (r *ResultSet) Counts() (succeeded, degraded, failed int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSucceeded:
			succeeded++
		case StatusDegraded:
			degraded++
		default:
			failed++
		}
	}
	return succeeded, degraded, failed
}

// MarshalJSON keeps a nil outcome list as an empty array.
func (r ResultSet) MarshalJSON() ([]byte, error) {
	type alias ResultSet
	if r.Outcomes == nil {
		r.Outcomes = []Outcome{}
	}
	return json.Marshal(alias(r))
}
