package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{"int", 7, 7, true},
		{"int64", int64(42), 42, true},
		{"uint8", uint8(3), 3, true},
		{"float64", float64(9), 9, true},
		{"string", " 100 ", 100, true},
		{"bytes", []byte("12"), 12, true},
		{"bad string", "abc", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt64(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestToString(t *testing.T) {
	day := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "ACME", ToString("ACME"))
	assert.Equal(t, "ACME", ToString([]byte("ACME")))
	assert.Equal(t, "100", ToString(int64(100)))
	assert.Equal(t, "3", ToString(int32(3)))
	assert.Equal(t, "32.5", ToString(32.5))
	assert.Equal(t, "2017-01-01", ToString(day))
	assert.Equal(t, "2017-01-01", ToString(&day))
	assert.Equal(t, "", ToString((*time.Time)(nil)))
}

func TestToTime(t *testing.T) {
	day := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want time.Time
		ok   bool
	}{
		{"time", day, day, true},
		{"pointer", &day, day, true},
		{"nil pointer", (*time.Time)(nil), time.Time{}, false},
		{"date string", "2024-03-08", day, true},
		{"date bytes", []byte("2024-03-08"), day, true},
		{"datetime", "2024-03-08 00:00:00", day, true},
		{"rfc3339", "2024-03-08T00:00:00Z", day, true},
		{"garbage", "next tuesday", time.Time{}, false},
		{"nil", nil, time.Time{}, false},
		{"int", 20240308, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToTime(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
