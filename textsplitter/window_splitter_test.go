package textsplitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowSplitterNoEmptyWindows(t *testing.T) {
	text := strings.Repeat("Harry walked through the corridor. ", 200)
	s := NewWindowSplitter(0, 0)
	windows := s.SplitText(text)

	require.NotEmpty(t, windows)
	for _, w := range windows {
		assert.NotEmpty(t, strings.TrimSpace(w))
	}
}

func TestWindowSplitterRespectsTargetSize(t *testing.T) {
	text := strings.Repeat("a", 5000)
	s := NewWindowSplitter(1000, 200)
	windows := s.SplitText(text)

	require.NotEmpty(t, windows)
	for _, w := range windows {
		assert.LessOrEqual(t, len([]rune(w)), 1200) // target + generous slack for overlap merge
	}
}

func TestWindowSplitterOverlapsNeighbors(t *testing.T) {
	text := strings.Repeat("Hermione studied late into the night. ", 100)
	s := NewWindowSplitter(1000, 200)
	windows := s.SplitText(text)

	require.Greater(t, len(windows), 1)
	// Some suffix of window[i] should reappear as a prefix of window[i+1].
	for i := 0; i < len(windows)-1; i++ {
		a, b := windows[i], windows[i+1]
		tail := a
		if len(tail) > 200 {
			tail = tail[len(tail)-200:]
		}
		assert.True(t, strings.Contains(b, tail[:minInt(20, len(tail))]))
	}
}

func TestWindowSplitterEmptyInput(t *testing.T) {
	s := NewWindowSplitter(0, 0)
	assert.Empty(t, s.SplitText(""))
	assert.Empty(t, s.SplitText("   \n\n  "))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
