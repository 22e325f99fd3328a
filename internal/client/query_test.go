package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name   string
		params []QueryParam
		want   string
	}{
		{
			"scalar and repeated keys",
			[]QueryParam{
				{Key: "a", Value: "x"},
				{Key: "b", Value: []string{"1", "2"}},
			},
			"?a=x&b=1&b=2",
		},
		{
			"drops nil and blank strings",
			[]QueryParam{
				{Key: "a", Value: nil},
				{Key: "b", Value: ""},
				{Key: "c", Value: "   "},
				{Key: "d", Value: "kept"},
			},
			"?d=kept",
		},
		{
			"everything dropped",
			[]QueryParam{{Key: "a", Value: nil}, {Key: "b", Value: ""}},
			"",
		},
		{"no params", nil, ""},
		{
			"caller order preserved",
			[]QueryParam{
				{Key: "z", Value: "1"},
				{Key: "a", Value: "2"},
				{Key: "m", Value: "3"},
			},
			"?z=1&a=2&m=3",
		},
		{
			"numbers and bools stringified",
			[]QueryParam{
				{Key: "limit", Value: 50},
				{Key: "wide", Value: true},
			},
			"?limit=50&wide=true",
		},
		{
			"any slice skips nil elements",
			[]QueryParam{{Key: "v", Value: []any{"x", nil, 2}}},
			"?v=x&v=2",
		},
		{
			"typed slices repeat the key too",
			[]QueryParam{
				{Key: "id", Value: []int{1, 2}},
				{Key: "f", Value: []float64{0.5}},
			},
			"?id=1&id=2&f=0.5",
		},
		{
			"values escaped",
			[]QueryParam{{Key: "q", Value: "a b&c"}},
			"?q=a+b%26c",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.params))
		})
	}
}

func TestJoinArgs(t *testing.T) {
	got := joinArgs("2025-06-01 00:00:00", "", []string{"T1", "O2"}, "1h")
	assert.Equal(t, "2025-06-01 00:00:00||T1,O2|1h", got)

	// Differing selections must never collide on the same key.
	a := joinArgs("", "", []string{"T1"}, "")
	b := joinArgs("", "", []string{"T2"}, "")
	assert.NotEqual(t, a, b)
}
