package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mchmarny/triage/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_ImportFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.txt", "p1", "p2")
	b := writeTestFile(t, dir, "b.txt", "p2", "", "p3")

	r := runApp(t, dir, "task", "import", "--name", "2016-test", "--file", a, "--file", b)
	require.Equal(t, 0, r.code, r.logs)
	assert.Equal(t, "imported task 2016-test: 3 ids from 2 sources\n", r.out)
}

func TestTask_ImportURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ids.txt" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "u1\nu2\n")
	}))
	defer srv.Close()

	dir := t.TempDir()
	r := runApp(t, dir, "--format", "json", "task", "import", "--name", "remote", "--url", srv.URL+"/ids.txt")
	require.Equal(t, 0, r.code, r.logs)

	var res ImportResult
	require.NoError(t, json.Unmarshal([]byte(r.out), &res))
	require.NotNil(t, res.Task)
	assert.Equal(t, "remote", res.Task.Name)
	assert.Equal(t, 2, res.Task.Size)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "url:"+srv.URL+"/ids.txt", res.Sources[0].String())

	r = runApp(t, dir, "task", "import", "--name", "missing", "--url", srv.URL+"/nope.txt")
	assert.Equal(t, exitOperational, r.code)
}

func TestTask_ImportErrors(t *testing.T) {
	dir := t.TempDir()
	empty := writeTestFile(t, dir, "empty.txt", "")

	tests := []struct {
		name string
		args []string
	}{
		{"no sources", []string{"task", "import", "--name", "x"}},
		{"no name", []string{"task", "import", "--file", empty}},
		{"empty set", []string{"task", "import", "--name", "x", "--file", empty}},
		{"missing file", []string{"task", "import", "--name", "x", "--file", dir + "/nope.txt"}},
		{"bad github ref", []string{"task", "import", "--name", "x", "--github", "owner-only"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runApp(t, dir, tt.args...)
			assert.Equal(t, exitOperational, r.code)
		})
	}
}

func TestTask_ListAndDelete(t *testing.T) {
	dir := t.TempDir()
	ids := writeTestFile(t, dir, "ids.txt", "p1", "p2")

	for _, name := range []string{"b-task", "a-task"} {
		r := runApp(t, dir, "task", "import", "--name", name, "--file", ids)
		require.Equal(t, 0, r.code, r.logs)
	}

	r := runApp(t, dir, "task", "list")
	require.Equal(t, 0, r.code, r.logs)
	lines := strings.Split(strings.TrimSpace(r.out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "a-task\t2\t"))
	assert.True(t, strings.HasSuffix(lines[1], "\tfile:"+ids))

	r = runApp(t, dir, "task", "rm", "--name", "a-task")
	require.Equal(t, 0, r.code, r.logs)
	assert.Contains(t, r.logs, "task deleted")

	r = runApp(t, dir, "--format", "json", "task", "ls")
	require.Equal(t, 0, r.code, r.logs)
	var list []*data.Task
	require.NoError(t, json.Unmarshal([]byte(r.out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "b-task", list[0].Name)

	r = runApp(t, dir, "task", "delete", "--name", "a-task")
	assert.Equal(t, exitOperational, r.code)
	assert.Contains(t, r.logs, "task not found")
}
