package orchestrator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

func specFromJSON(t *testing.T, raw string) domain.WorkloadSpec {
	t.Helper()
	spec, err := decodeSpec([]byte(raw))
	require.NoError(t, err)
	return spec
}

func TestDeriveRestartSpec_IncrementsCounter(t *testing.T) {
	original := specFromJSON(t, `{
		"Name": "svc-api",
		"TaskTemplate": {"ContainerSpec": {"Image": "api:1.4"}, "ForceUpdate": 7},
		"Mode": {"Replicated": {"Replicas": 3}}
	}`)

	derived, err := DeriveRestartSpec(original, false)
	require.NoError(t, err)

	got, ok := ForceUpdateCounter(derived)
	require.True(t, ok)
	assert.Equal(t, uint64(8), got)

	// the fetched spec is left alone
	before, _ := ForceUpdateCounter(original)
	assert.Equal(t, uint64(7), before)

	// everything else is carried over
	assert.Equal(t, "svc-api", derived["Name"])
	assert.Equal(t, original["Mode"], derived["Mode"])
}

func TestDeriveRestartSpec_DeepCopy(t *testing.T) {
	original := specFromJSON(t, `{"TaskTemplate": {"ForceUpdate": 1, "Placement": {"Constraints": ["node.role==worker"]}}}`)

	derived, err := DeriveRestartSpec(original, false)
	require.NoError(t, err)

	derivedPlacement := derived["TaskTemplate"].(map[string]interface{})["Placement"].(map[string]interface{})
	derivedPlacement["Constraints"].([]interface{})[0] = "mutated"

	originalPlacement := original["TaskTemplate"].(map[string]interface{})["Placement"].(map[string]interface{})
	assert.Equal(t, "node.role==worker", originalPlacement["Constraints"].([]interface{})[0])
}

func TestDeriveRestartSpec_MissingStructure(t *testing.T) {
	testCases := []struct {
		wantErr       error
		name          string
		raw           string
		createMissing bool
	}{
		{name: "no task template", raw: `{"Name": "svc"}`, wantErr: ErrMissingTaskTemplate},
		{name: "task template not an object", raw: `{"TaskTemplate": "nope"}`, wantErr: ErrMissingTaskTemplate},
		{name: "no counter", raw: `{"TaskTemplate": {}}`, wantErr: ErrMissingForceUpdate},
		{name: "no counter even when creating needs a template", raw: `{}`, createMissing: true, wantErr: ErrMissingTaskTemplate},
		{name: "negative counter", raw: `{"TaskTemplate": {"ForceUpdate": -1}}`, wantErr: ErrInvalidForceUpdate},
		{name: "fractional counter", raw: `{"TaskTemplate": {"ForceUpdate": 1.5}}`, wantErr: ErrInvalidForceUpdate},
		{name: "string counter", raw: `{"TaskTemplate": {"ForceUpdate": "3"}}`, wantErr: ErrInvalidForceUpdate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DeriveRestartSpec(specFromJSON(t, tc.raw), tc.createMissing)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDeriveRestartSpec_CreateMissingCounter(t *testing.T) {
	derived, err := DeriveRestartSpec(specFromJSON(t, `{"TaskTemplate": {}}`), true)
	require.NoError(t, err)

	got, ok := ForceUpdateCounter(derived)
	require.True(t, ok)
	assert.Equal(t, uint64(1), got)
}

func TestCounterValue_NativeTypes(t *testing.T) {
	for _, raw := range []interface{}{float64(4), 4, int64(4), uint64(4), json.Number("4")} {
		v, err := counterValue(raw)
		require.NoError(t, err, "%T", raw)
		assert.Equal(t, uint64(4), v)
	}
}

func TestSpecRoundTripKeepsLargeIntegers(t *testing.T) {
	raw := `{"TaskTemplate":{"ForceUpdate":2,"Resources":{"Limits":{"MemoryBytes":9007199254740993}}}}`

	derived, err := DeriveRestartSpec(specFromJSON(t, raw), false)
	require.NoError(t, err)

	out, err := encodeSpec(derived)
	require.NoError(t, err)
	assert.JSONEq(t, `{"TaskTemplate":{"ForceUpdate":3,"Resources":{"Limits":{"MemoryBytes":9007199254740993}}}}`, string(out))
	assert.Contains(t, string(out), "9007199254740993")
}
