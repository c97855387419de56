package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mchmarny/triage/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

type result struct {
	code int
	out  string
	logs string
}

// runApp runs the CLI against a temporary config dir and captures stdout
// and the diagnostics log.
func runApp(t *testing.T, dir string, args ...string) result {
	t.Helper()

	var out, logs bytes.Buffer
	origDefault := slog.Default()
	origSetter := setLogger
	setLogger = func(level string) {
		h := logging.NewCLIHandler(&logs, logging.ParseLogLevel(level)).WithColor(false)
		slog.SetDefault(slog.New(h))
	}
	t.Cleanup(func() {
		setLogger = origSetter
		slog.SetDefault(origDefault)
	})
	setLogger("info")

	full := append([]string{appName, "--" + configDirFlagName, dir}, args...)
	code := run(context.Background(), full, &out)

	return result{code: code, out: out.String(), logs: logs.String()}
}

func writeTestFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600))
	return path
}

func TestApp_Version(t *testing.T) {
	r := runApp(t, t.TempDir(), "--version")
	assert.Equal(t, 0, r.code)
	assert.Contains(t, r.out, version)
}

func TestApp_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	test := writeTestFile(t, dir, "test.tsv", "p1\tgreen")

	r := runApp(t, dir, "--format", "xml", "evaluate", test)
	assert.Equal(t, exitOperational, r.code)
	assert.Contains(t, r.logs, "invalid format")
}

func TestApp_CreatesConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")
	test := writeTestFile(t, t.TempDir(), "test.tsv", "p1\tgreen")

	r := runApp(t, dir, "evaluate", test)
	require.Equal(t, 0, r.code)

	_, err := os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}

func TestGetConfig_Default(t *testing.T) {
	cfg := getConfig(context.Background())
	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Format)
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 0, exitStatus(nil))
	assert.Equal(t, exitOperational, exitStatus(assert.AnError))
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, "json", map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, encode(&buf, "yaml", map[string]int{"a": 1}))
	assert.Equal(t, "a: 1\n", buf.String())
}
