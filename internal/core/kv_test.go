package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectToRowsTyping(t *testing.T) {
	rows := ObjectToRows(map[string]any{
		"name":    "thermo-1",
		"count":   float64(3),
		"enabled": true,
		"empty":   nil,
		"nested":  map[string]any{"a": float64(1)},
	})
	require.Len(t, rows, 5)

	byKey := make(map[string]KVRow, len(rows))
	for _, r := range rows {
		assert.NotEmpty(t, r.ID)
		byKey[r.Key] = r
	}

	assert.Equal(t, KVString, byKey["name"].Type)
	assert.Equal(t, "thermo-1", byKey["name"].Value)
	assert.Equal(t, KVNumber, byKey["count"].Type)
	assert.Equal(t, float64(3), byKey["count"].Value)
	assert.Equal(t, KVBoolean, byKey["enabled"].Type)
	assert.Equal(t, KVNull, byKey["empty"].Type)
	assert.Equal(t, KVJSON, byKey["nested"].Type)
	assert.Contains(t, byKey["nested"].Value, `"a"`)

	// Keys come out in sorted order so the editor is stable.
	assert.Equal(t, "count", rows[0].Key)
	assert.Equal(t, "empty", rows[1].Key)
}

func TestObjectToRowsEmpty(t *testing.T) {
	assert.Empty(t, ObjectToRows(nil))
	assert.Empty(t, ObjectToRows(map[string]any{}))
}

func TestRowsToObjectRoundTrip(t *testing.T) {
	obj := map[string]any{
		"name":    "thermo-1",
		"count":   float64(3),
		"enabled": true,
		"empty":   nil,
		"nested":  map[string]any{"a": float64(1)},
	}
	out, warnings := RowsToObject(ObjectToRows(obj))
	assert.Empty(t, warnings)
	assert.Equal(t, obj, out)
}

func TestRowsToObjectDropsEmptyKeys(t *testing.T) {
	out, warnings := RowsToObject([]KVRow{
		{Key: "", Type: KVString, Value: "ignored"},
		{Key: "   ", Type: KVString, Value: "ignored"},
		{Key: "kept", Type: KVString, Value: "v"},
	})
	assert.Empty(t, warnings)
	assert.Equal(t, map[string]any{"kept": "v"}, out)
}

func TestRowsToObjectNilWhenEmpty(t *testing.T) {
	out, _ := RowsToObject(nil)
	assert.Nil(t, out)

	// All rows dropped leaves no keys, which is nil rather than an
	// empty object, so callers omit the field entirely.
	out, _ = RowsToObject([]KVRow{{Key: "", Type: KVString, Value: "x"}})
	assert.Nil(t, out)
}

func TestRowsToObjectInvalidJSONRow(t *testing.T) {
	out, warnings := RowsToObject([]KVRow{
		{Key: "bad", Type: KVJSON, Value: "{not json"},
		{Key: "good", Type: KVJSON, Value: `{"a": 1}`},
	})
	require.Len(t, warnings, 1)
	assert.Equal(t, "key 'bad': invalid JSON, sent as string", warnings[0])
	assert.Equal(t, "{not json", out["bad"])
	assert.Equal(t, map[string]any{"a": float64(1)}, out["good"])
}

func TestRowsToObjectCoercion(t *testing.T) {
	out, warnings := RowsToObject([]KVRow{
		{Key: "n1", Type: KVNumber, Value: "42.5"},
		{Key: "n2", Type: KVNumber, Value: "garbage"},
		{Key: "b1", Type: KVBoolean, Value: "false"},
		{Key: "b2", Type: KVBoolean, Value: float64(1)},
		{Key: "s1", Type: KVString, Value: nil},
		{Key: "untyped", Value: "plain"},
	})
	assert.Empty(t, warnings)
	assert.Equal(t, 42.5, out["n1"])
	assert.Equal(t, float64(0), out["n2"])
	assert.Equal(t, false, out["b1"])
	assert.Equal(t, true, out["b2"])
	assert.Equal(t, "", out["s1"])
	assert.Equal(t, "plain", out["untyped"])
}
