package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/strategem/internal/ingest"
)

func TestDecisionFocus_Explicit(t *testing.T) {
	var warn bytes.Buffer

	f, err := decisionFocus("Which channel?", "compare", []string{"Direct", "Wholesale"}, &warn)

	require.NoError(t, err)
	assert.Equal(t, ingest.DecisionCompare, f.Type)
	assert.Equal(t, []string{"Direct", "Wholesale"}, f.Options)
	assert.Empty(t, warn.String())
}

func TestDecisionFocus_PartialWarns(t *testing.T) {
	var warn bytes.Buffer

	f, err := decisionFocus("Which channel?", "", nil, &warn)

	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Contains(t, warn.String(), "--options")
}

func TestDecisionFocus_Invalid(t *testing.T) {
	_, err := decisionFocus("", "rank", nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, ingest.ErrInvalidDecisionFocus)

	_, err = decisionFocus("Which channel?", "", []string{"Direct"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ingest.ErrInvalidDecisionFocus)
}

func TestDecisionFocus_NoneGiven(t *testing.T) {
	var warn bytes.Buffer

	f, err := decisionFocus("", "", nil, &warn)

	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Empty(t, warn.String())
}

func TestAnalyzeCmd_OptionsFlagSplitsOnComma(t *testing.T) {
	t.Cleanup(func() { decisionOptions = nil })
	require.NoError(t, AnalyzeCmd.Flags().Set("options", "Direct to store,Wholesale"))

	assert.Equal(t, []string{"Direct to store", "Wholesale"}, decisionOptions)
}
