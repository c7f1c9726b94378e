package nexrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultLimit},
		{"abc", DefaultLimit},
		{"5.5", DefaultLimit},
		{"5", 5},
		{" 42 ", 42},
		{"0", MinLimit},
		{"-3", MinLimit},
		{"10000", MaxLimit},
		{"10001", MaxLimit},
		{"99999999999999999999", MaxLimit},
		{"-99999999999999999999", MinLimit},
		{"+7", 7},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLimit(tt.raw))
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 1, ClampLimit(-100))
	assert.Equal(t, 250, ClampLimit(250))
	assert.Equal(t, 10000, ClampLimit(1<<40))
}
