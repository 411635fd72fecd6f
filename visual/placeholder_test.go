package visual

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlaceholderProducesValidPNG(t *testing.T) {
	data, err := GeneratePlaceholder("Harry Potter", 1085936863)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, placeholderWidth, img.Bounds().Dx())
	assert.Equal(t, placeholderHeight, img.Bounds().Dy())
}

func TestGeneratePlaceholderDeterministic(t *testing.T) {
	a, err := GeneratePlaceholder("Harry Potter", 42)
	require.NoError(t, err)
	b, err := GeneratePlaceholder("Harry Potter", 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGeneratePlaceholderDistinctSeedsDistinctColor(t *testing.T) {
	a, err := GeneratePlaceholder("Harry Potter", 1)
	require.NoError(t, err)
	b, err := GeneratePlaceholder("Harry Potter", 2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestInitialsTwoWords(t *testing.T) {
	assert.Equal(t, "HP", initials("Harry Potter"))
}

func TestInitialsSingleWord(t *testing.T) {
	assert.Equal(t, "D", initials("Dobby"))
}

func TestInitialsEmpty(t *testing.T) {
	assert.Equal(t, "?", initials(""))
}

func TestBackgroundColorFromSeedStable(t *testing.T) {
	assert.Equal(t, backgroundColorFromSeed(7), backgroundColorFromSeed(7))
}
