package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_SaveAndClear(t *testing.T) {
	dir := t.TempDir()

	r := runApp(t, dir, "auth", "--token", " abc123 ")
	require.Equal(t, 0, r.code, r.logs)
	assert.Contains(t, r.logs, "token saved")

	token, err := getSourceToken(dir)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	r = runApp(t, dir, "auth", "--clear")
	require.Equal(t, 0, r.code, r.logs)
	assert.Contains(t, r.logs, "token removed")

	_, err = getSourceToken(dir)
	assert.Error(t, err)
}

func TestAuth_RequiresFlag(t *testing.T) {
	r := runApp(t, t.TempDir(), "auth")
	assert.Equal(t, exitOperational, r.code)
}

func TestGetSourceToken_FileFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, clearSourceToken(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, tokenFileName), []byte("from-file\n"), tokenFileMode))

	token, err := getSourceToken(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-file", token)

	require.NoError(t, clearSourceToken(dir))
	_, err = os.Stat(filepath.Join(dir, tokenFileName))
	assert.True(t, os.IsNotExist(err))
}
