package commandlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAppendCommandAndReadBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.jsonl")

	log, err := Open(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	id, err := log.AppendCommand(1000, map[string]string{"op": "submit"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.NoError(t, log.AppendEvent(1001, id, map[string]string{"result": "ok"}))
	require.NoError(t, log.Close())

	entries, err := ReadCommands(path)
	require.NoError(t, err)
	require.Len(t, entries, 1) // only the command entry, not the event entry
	assert.Equal(t, EntryCommand, entries[0].EntryType)
	assert.Equal(t, id, entries[0].CommandID)
}

func TestReadCommandsOnMissingFileReturnsEmpty(t *testing.T) {
	entries, err := ReadCommands(filepath.Join(t.TempDir(), "does-not-exist.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadCommandsToleratesCorruptLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.jsonl")

	log, err := Open(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = log.AppendCommand(1, map[string]string{"a": "1"})
	require.NoError(t, err)
	require.NoError(t, log.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not valid json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	log2, err := Open(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = log2.AppendCommand(2, map[string]string{"b": "2"})
	require.NoError(t, err)
	require.NoError(t, log2.Close())

	entries, err := ReadCommands(path)
	require.NoError(t, err)
	require.Len(t, entries, 2) // the corrupt line in between is skipped
}
