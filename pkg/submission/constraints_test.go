package submission

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstraints(t *testing.T) {
	c := NewConstraints("b", " a ", "", "b")
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Has("a"))
	assert.False(t, c.Has(" a "))
	assert.Equal(t, []string{"a", "b"}, c.Sorted())
}

func TestConstraints_Empty(t *testing.T) {
	var c Constraints
	assert.True(t, c.Empty())
	assert.False(t, c.Has("a"))
	assert.True(t, NewConstraints().Empty())
	assert.False(t, NewConstraints("a").Empty())
}

func TestReadConstraints(t *testing.T) {
	c, err := ReadConstraints(strings.NewReader("p1\n\n  p2  \np1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, c.Sorted())

	_, err = ReadConstraints(nil)
	assert.Error(t, err)
}

func TestLoadConstraints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("x\ny\nz\n"), 0600))

	c, err := LoadConstraints(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadConstraints(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
