package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCombineStart(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	date := time.Date(2026, 8, 30, 18, 45, 33, 12345, loc)

	tests := []struct {
		name      string
		startTime string
		want      time.Time
	}{
		{"valid clock", "10:05", time.Date(2026, 8, 30, 10, 5, 0, 0, loc)},
		{"end of day", "23:59", time.Date(2026, 8, 30, 23, 59, 0, 0, loc)},
		{"empty falls back to midnight", "", time.Date(2026, 8, 30, 0, 0, 0, 0, loc)},
		{"hour out of range", "25:99", time.Date(2026, 8, 30, 0, 0, 0, 0, loc)},
		{"missing minutes", "7", time.Date(2026, 8, 30, 0, 0, 0, 0, loc)},
		{"garbage", "xx:yy", time.Date(2026, 8, 30, 0, 0, 0, 0, loc)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CombineStart(date, tc.startTime)
			assert.True(t, got.Equal(tc.want), "got %v, want %v", got, tc.want)
			assert.Equal(t, loc, got.Location())
		})
	}
}
