package core_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/dhabedank/strategem/internal/core"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ThreatOfNewEntrants", "threat_of_new_entrants"},
		{"threatOfNewEntrants", "threat_of_new_entrants"},
		{"Threat of New Entrants", "threat_of_new_entrants"},
		{"  Supplier-Power  ", "supplier_power"},
		{"feedback__loops", "feedback_loops"},
		{"HTTPServer", "http_server"},
		{"Level2Risk", "level2_risk"},
		{"already_snake", "already_snake"},
		{"**Key Risks**", "key_risks"},
		{"***", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, core.NormalizeKey(tt.input))
		})
	}
}

func TestNormalizeKey_Idempotent(t *testing.T) {
	inputs := []string{
		"ThreatOfNewEntrants", "Threat of New Entrants", "HTTPServerURL", "a-B-c",
		"Überblick Gesamt", "x__Y__z", "_leading", "trailing_", "ALLCAPS", "mixed CASE words",
	}
	for _, in := range inputs {
		once := core.NormalizeKey(in)
		if twice := core.NormalizeKey(once); twice != once {
			t.Errorf("NormalizeKey(%q) = %q, but normalizing again gives %q", in, once, twice)
		}
	}
}

func TestNormalizeRecord(t *testing.T) {
	var input map[string]any
	err := json.Unmarshal([]byte(`{
		"ThreatOfNewEntrants": {"Level": "High", "Unknowns": ["capital needs"]},
		"KeyComponents": [{"ComponentName": "Sellers", "Role": null}],
		"Score": 3.5,
		"Verified": true,
		"***": "dropped"
	}`), &input)
	assert.NoError(t, err)

	got := core.NormalizeRecord(input)

	want := core.Record{
		"threat_of_new_entrants": map[string]any{
			"level":    "High",
			"unknowns": []any{"capital needs"},
		},
		"key_components": []any{
			map[string]any{"component_name": "Sellers", "role": ""},
		},
		"score":    "3.5",
		"verified": "true",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeRecord() mismatch (-want +got):\n%s", diff)
	}

	again := core.NormalizeRecord(got)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("NormalizeRecord() not idempotent (-once +twice):\n%s", diff)
	}
}

func TestNormalizeRecord_CollisionIsDeterministic(t *testing.T) {
	input := map[string]any{"Level": "upper", "level": "lower", "LEVEL": "caps"}

	for i := 0; i < 20; i++ {
		got := core.NormalizeRecord(input)
		assert.Equal(t, core.Record{"level": "caps"}, got)
	}
}

func TestValueText(t *testing.T) {
	assert.Equal(t, "a; b", core.ValueText([]any{"a", "", "b"}))
	assert.Equal(t, "level: High; note: x", core.ValueText(map[string]any{"note": "x", "level": "High"}))
	assert.Equal(t, "", core.ValueText(nil))
}
