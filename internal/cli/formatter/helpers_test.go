package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0m"},
		{-5, "0m"},
		{20, "20m"},
		{60, "1h"},
		{95, "1h 35m"},
		{240, "4h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinutes(tt.in), "minutes %d", tt.in)
	}
}

func TestFormatShift(t *testing.T) {
	assert.Equal(t, "+3d", FormatShift(3))
	assert.Equal(t, "-2d", FormatShift(-2))
	assert.Equal(t, "0d", FormatShift(0))
}

func TestDayLabel(t *testing.T) {
	gen := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "Today · Sat Mar 15", DayLabel(gen, 0))
	assert.Equal(t, "Tomorrow · Sun Mar 16", DayLabel(gen, 1))
	assert.Equal(t, "Day 3 · Mon Mar 17", DayLabel(gen, 2))
	assert.Equal(t, "Day 18 · Tue Apr 1", DayLabel(gen, 17))
}

func TestTruncID(t *testing.T) {
	UseColor(false)
	defer UseColor(true)

	assert.Equal(t, "01HZX3AB", TruncID("01HZX3ABCDEF"))
	assert.Equal(t, "short", TruncID("short"))
}

func TestRenderBox(t *testing.T) {
	UseColor(false)
	defer UseColor(true)

	out := RenderBox("Imported", "hello")
	assert.Contains(t, out, "IMPORTED")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "╭")
}

func TestRenderProgress(t *testing.T) {
	UseColor(false)
	defer UseColor(true)

	assert.Equal(t, "[█████░░░░░]  50%", RenderProgress(0.5, 10))
	assert.Equal(t, "[░░░░]   0%", RenderProgress(-1, 4))
	assert.Equal(t, "[████] 100%", RenderProgress(2, 4))
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	UseColor(false)
	defer UseColor(true)

	out := RenderTable([]string{"A", "LONGER"}, [][]string{{"wide-cell", "x"}, {"y", "z"}})

	assert.Equal(t, "A          LONGER\n"+
		"─────────  ──────\n"+
		"wide-cell  x\n"+
		"y          z\n", out)
	assert.Empty(t, RenderTable(nil, nil))
}
