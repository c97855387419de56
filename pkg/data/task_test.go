package data

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTaskLifecycle(t *testing.T, db *sql.DB) {
	t.Helper()

	saved, err := SaveTask(db, "2016-test", "ids.txt", []string{"p3", "p1", "p2", "p1", " "})
	require.NoError(t, err)
	assert.Equal(t, 3, saved.Size)

	got, err := GetTask(db, "2016-test")
	require.NoError(t, err)
	assert.Equal(t, saved.Name, got.Name)
	assert.Equal(t, "ids.txt", got.Source)
	assert.Equal(t, 3, got.Size)
	assert.Equal(t, saved.Imported.Unix(), got.Imported.Unix())

	ids, err := GetTaskIDs(db, "2016-test")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)

	// replacing a task drops the previous ids
	_, err = SaveTask(db, "2016-test", "ids-v2.txt", []string{"q1"})
	require.NoError(t, err)
	ids, err = GetTaskIDs(db, "2016-test")
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, ids)

	_, err = SaveTask(db, "2016-dev", "dev.txt", []string{"d1", "d2"})
	require.NoError(t, err)

	list, err := ListTasks(db)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2016-dev", list[0].Name)
	assert.Equal(t, "2016-test", list[1].Name)

	require.NoError(t, DeleteTask(db, "2016-test"))
	_, err = GetTask(db, "2016-test")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = GetTaskIDs(db, "2016-test")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = DeleteTask(db, "2016-test")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskLifecycle_SQLite(t *testing.T) {
	runTaskLifecycle(t, setupTestDB(t))
}

func TestSaveTask_Validation(t *testing.T) {
	db := setupTestDB(t)

	_, err := SaveTask(db, " ", "src", []string{"a"})
	assert.Error(t, err)

	_, err = SaveTask(db, "empty", "src", []string{"", " "})
	assert.Error(t, err)
}

func TestTask_NilDB(t *testing.T) {
	_, err := SaveTask(nil, "a", "b", []string{"c"})
	assert.ErrorIs(t, err, errDBNotInitialized)

	_, err = GetTask(nil, "a")
	assert.ErrorIs(t, err, errDBNotInitialized)

	_, err = GetTaskIDs(nil, "a")
	assert.ErrorIs(t, err, errDBNotInitialized)

	_, err = ListTasks(nil)
	assert.ErrorIs(t, err, errDBNotInitialized)

	assert.ErrorIs(t, DeleteTask(nil, "a"), errDBNotInitialized)
}

func TestListTasks_Empty(t *testing.T) {
	list, err := ListTasks(setupTestDB(t))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"b", " a", "a ", "", "b"}))
	assert.Empty(t, dedupe(nil))
}
