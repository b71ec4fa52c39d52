package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryRange(t *testing.T) {
	engine := NewEngine(nil, nil, nil, 6, 10)

	tests := []struct {
		name      string
		count     int
		wantStart int
		wantEnd   int
		wantOk    bool
	}{
		{name: "first interval clamps to zero", count: 10, wantStart: 0, wantEnd: 4, wantOk: true},
		{name: "second interval", count: 20, wantStart: 4, wantEnd: 14, wantOk: true},
		{name: "third interval", count: 30, wantStart: 14, wantEnd: 24, wantOk: true},
		{name: "too few messages", count: 6, wantOk: false},
		{name: "zero messages", count: 0, wantOk: false},
		{name: "window not yet exceeded", count: 4, wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := engine.SummaryRange(tt.count)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.wantStart, start)
				assert.Equal(t, tt.wantEnd, end)
			}
		})
	}
}

func TestShouldSummarize(t *testing.T) {
	engine := NewEngine(nil, nil, nil, 6, 10)

	assert.False(t, engine.ShouldSummarize(0))
	assert.False(t, engine.ShouldSummarize(5))
	assert.True(t, engine.ShouldSummarize(10))
	assert.False(t, engine.ShouldSummarize(11))
	assert.True(t, engine.ShouldSummarize(20))
	assert.True(t, engine.ShouldSummarize(30))
}

func TestNewEngine_Defaults(t *testing.T) {
	engine := NewEngine(nil, nil, nil, 0, 0)

	assert.Equal(t, 6, engine.window)
	assert.Equal(t, 10, engine.interval)
}
