package core_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/strategem/internal/core"
)

func testSpec(name string, required ...string) core.FrameworkSpec {
	spec := core.FrameworkSpec{Name: name, Title: name + " title", Lens: "test lens"}
	for _, key := range required {
		spec.Fields = append(spec.Fields, core.FieldSpec{Key: key, Title: key, Required: true})
	}
	return spec
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := core.NewRegistry()
	require.NoError(t, reg.Register(testSpec("porter", "ThreatOfNewEntrants", "Rivalry")))

	spec, err := reg.Get("porter")
	require.NoError(t, err)
	assert.Equal(t, "porter title", spec.Title)
	assert.Equal(t, []string{"threat_of_new_entrants", "rivalry"}, spec.RequiredKeys())
	assert.Equal(t, core.KindText, spec.Fields[0].Kind)
}

func TestRegistry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		spec    core.FrameworkSpec
		wantErr error
	}{
		{"empty name", testSpec("  ", "a"), core.ErrInvalidFramework},
		{"no required fields", core.FrameworkSpec{Name: "x", Fields: []core.FieldSpec{{Key: "a"}}}, core.ErrInvalidFramework},
		{"empty key", core.FrameworkSpec{Name: "x", Fields: []core.FieldSpec{{Key: "**", Required: true}}}, core.ErrInvalidFramework},
		{"duplicate key after normalizing", testSpec("x", "KeyRisks", "key_risks"), core.ErrInvalidFramework},
		{"duplicate framework", testSpec("porter", "a"), core.ErrDuplicateFramework},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := core.NewRegistry()
			require.NoError(t, reg.Register(testSpec("porter", "a")))

			err := reg.Register(tt.spec)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRegistry_UnknownFramework(t *testing.T) {
	reg := core.NewRegistry()

	_, err := reg.Get("missing")

	assert.ErrorIs(t, err, core.ErrUnknownFramework)
}

func TestRegistry_ListPreservesOrderAndIsolation(t *testing.T) {
	reg := core.NewRegistry()
	for _, name := range []string{"systems_dynamics", "porter", "pestle"} {
		require.NoError(t, reg.Register(testSpec(name, "a")))
	}

	specs := reg.List()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"systems_dynamics", "porter", "pestle"}, names)
	assert.Equal(t, names, reg.Names())

	specs[0].Fields[0].Key = "mutated"
	again, err := reg.Get("systems_dynamics")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Fields[0].Key)
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	reg := core.NewRegistry()
	require.NoError(t, reg.Register(testSpec("porter", "a")))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Get("porter")
			assert.NoError(t, err)
			assert.Len(t, reg.List(), 1)
		}()
	}
	wg.Wait()
}
