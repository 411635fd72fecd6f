package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "book.doc")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	_, _, loadErr := Load(p)
	require.Error(t, loadErr)
	assert.ErrorIs(t, loadErr, ErrUnsupportedFormat)
}

func TestLoadPlainText(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "HP-PS.txt")
	body := strings.Repeat("Harry walked through the corridor. ", 300)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	meta, windows, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "HP-PS", meta.Title)
	assert.NotEmpty(t, windows)
	assert.Equal(t, len(windows), meta.WindowCount)
	for _, w := range windows {
		assert.NotEmpty(t, strings.TrimSpace(w.Text))
	}
}

func TestLoadEmptyTextFails(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(p, []byte("   \n\n  "), 0o644))

	_, _, err := Load(p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocumentLoadFailed)
}
