package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func TestTimeLabelPassthrough(t *testing.T) {
	for _, label := range []string{"09:05", "23:59", "0:00", "  14:30  "} {
		got, err := TimeLabel(label, testNow)
		require.NoError(t, err, label)
		assert.NotEmpty(t, got)
	}
}

func TestTimeLabelNatural(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"5pm", "17:00"},
		{"noon", "12:00"},
		{"in 2 hours", "12:00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := TimeLabel(tt.input, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeLabelEmpty(t *testing.T) {
	_, err := TimeLabel("  ", testNow)
	assert.Error(t, err)
}
