package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/conferencia/internal/model"
)

func TestSatisfies(t *testing.T) {
	idx := NewIndex([]model.Account{
		{ID: 10, Classification: "1.1"},
		{ID: 20, Classification: "1.1.002"},
		{ID: 30, Classification: "1.10"},
		{ID: 40, Classification: " 1.1 "},
		{ID: 50, Classification: ""},
	})

	tests := []struct {
		name   string
		posted int
		rule   int
		want   bool
	}{
		{"same account", 10, 10, true},
		{"strict descendant", 20, 10, true},
		{"ancestor does not satisfy descendant", 10, 20, false},
		{"prefix without separator", 30, 10, false},
		{"equal classification other id", 40, 10, true},
		{"posted unknown", 99, 10, false},
		{"rule unknown", 10, 99, false},
		{"unknown but identical", 99, 99, true},
		{"both empty legs", 0, 0, true},
		{"empty leg against rule", 0, 10, false},
		{"unclassified account", 50, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.Satisfies(tt.posted, tt.rule))
		})
	}
}

func TestClassificationOfAndLabel(t *testing.T) {
	idx := NewIndex(SampleChart())

	c, ok := idx.ClassificationOf(11)
	assert.True(t, ok)
	assert.Equal(t, "1.1.1.002", c)

	_, ok = idx.ClassificationOf(12345)
	assert.False(t, ok)

	assert.Equal(t, "1.1.1.002", idx.Label(11))
	assert.Equal(t, "#12345", idx.Label(12345))
	assert.Equal(t, "", idx.Label(0))
}
