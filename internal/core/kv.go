// internal/core/kv.go
//
// Codec between an arbitrary JSON object (device meta, run recipe or
// settings, command payloads) and an ordered list of typed rows, the
// shape a generic key/value editor works with. Decoding is tolerant:
// it reports problems as warnings and always produces a result.
package core

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// KVType tags the value variant of one editor row.
type KVType string

const (
	KVString  KVType = "string"
	KVNumber  KVType = "number"
	KVBoolean KVType = "boolean"
	KVJSON    KVType = "json"
	KVNull    KVType = "null"
)

// KVRow is one entry of an object under edit. For string/number/
// boolean the value is held directly; for json it is a JSON source
// string; for null it is unused.
type KVRow struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Type  KVType `json:"type"`
	Value any    `json:"value,omitempty"`
}

// ObjectToRows flattens obj into typed rows, one per key in sorted
// order. Row ids are fresh UUIDs; order is not significant to the
// backend, which treats the result as a map.
func ObjectToRows(obj map[string]any) []KVRow {
	if len(obj) == 0 {
		return []KVRow{}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]KVRow, 0, len(keys))
	for _, k := range keys {
		row := KVRow{ID: uuid.NewString(), Key: k}
		switch v := obj[k].(type) {
		case nil:
			row.Type = KVNull
		case bool:
			row.Type = KVBoolean
			row.Value = v
		case float64:
			row.Type = KVNumber
			row.Value = v
		case int:
			row.Type = KVNumber
			row.Value = float64(v)
		case int64:
			row.Type = KVNumber
			row.Value = float64(v)
		case json.Number:
			row.Type = KVNumber
			f, _ := v.Float64()
			row.Value = f
		case string:
			row.Type = KVString
			row.Value = v
		default:
			row.Type = KVJSON
			if b, err := json.MarshalIndent(v, "", "  "); err == nil {
				row.Value = string(b)
			} else {
				row.Value = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// RowsToObject rebuilds an object from editor rows. Rows with an empty
// trimmed key are dropped. A json row whose value does not parse is
// kept as its raw string and reported as a warning; nothing here is
// fatal. A result with zero keys is returned as nil so callers can
// omit the field instead of sending an empty object.
func RowsToObject(rows []KVRow) (map[string]any, []string) {
	var warnings []string
	if len(rows) == 0 {
		return nil, warnings
	}

	out := make(map[string]any)
	for _, r := range rows {
		k := strings.TrimSpace(r.Key)
		if k == "" {
			continue
		}

		t := r.Type
		if t == "" {
			t = KVString
		}

		switch t {
		case KVNull:
			out[k] = nil
		case KVBoolean:
			out[k] = coerceBool(r.Value)
		case KVNumber:
			out[k] = coerceNumber(r.Value)
		case KVJSON:
			s, ok := r.Value.(string)
			if !ok {
				out[k] = r.Value
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				out[k] = nil
				continue
			}
			var parsed any
			if err := json.Unmarshal([]byte(s), &parsed); err != nil {
				out[k] = r.Value
				warnings = append(warnings, fmt.Sprintf("key '%s': invalid JSON, sent as string", k))
				continue
			}
			out[k] = parsed
		default:
			if r.Value == nil {
				out[k] = ""
			} else if s, ok := r.Value.(string); ok {
				out[k] = s
			} else {
				out[k] = fmt.Sprint(r.Value)
			}
		}
	}

	if len(out) == 0 {
		return nil, warnings
	}
	return out, warnings
}

func coerceBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != "" && x != "false" && x != "0"
	case float64:
		return x != 0
	case nil:
		return false
	default:
		return true
	}
}

func coerceNumber(v any) float64 {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		n, _ = x.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
