// Package commandlog implements the append-only line-delimited JSON
// command/event log that the matching engine's replay reads back. The log
// is a mutex-guarded, buffered writer that flushes after every entry;
// recovery reads the file back with ReadCommands. It records two kinds of
// entries, commands (replayable) and events (informational).
package commandlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EntryType distinguishes a replayable command from an informational event
// record.
type EntryType string

const (
	EntryCommand EntryType = "command"
	EntryEvent   EntryType = "event"
)

// Entry is one line of the log.
type Entry struct {
	EntryType   EntryType       `json:"entryType"`
	TimestampMs int64           `json:"timestampMs"`
	CommandID   string          `json:"commandId,omitempty"`
	Payload     json.RawMessage `json:"payload"`
}

// Log is the append-only writer/reader. Safe for concurrent Append* calls;
// ReadCommands is meant for one-shot recovery before the engine starts
// taking live traffic.
type Log struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *bufio.Writer
	logger *zap.Logger
}

// Open creates the log's parent directory if it is missing and opens path
// for appending (creating it if absent). Both happen in Open itself, before
// any entry is written. Writes are not fsynced.
func Open(path string, logger *zap.Logger) (*Log, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Log{
		path:   path,
		file:   f,
		writer: bufio.NewWriter(f),
		logger: logger,
	}, nil
}

// NewCommandID mints an opaque identifier linking a command entry to the
// event entries it produced.
func NewCommandID() string { return "cmd_" + uuid.NewString() }

// AppendCommand writes a command entry and returns its generated id.
func (l *Log) AppendCommand(nowMs int64, payload interface{}) (string, error) {
	id := NewCommandID()
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	entry := Entry{EntryType: EntryCommand, TimestampMs: nowMs, CommandID: id, Payload: raw}
	if err := l.appendLine(entry); err != nil {
		return "", err
	}
	return id, nil
}

// AppendEvent writes an informational event entry. Replay re-emits fan-out
// events to keep downstream snapshot consumers consistent, but never
// re-persists anything: neither AppendCommand nor AppendEvent is called
// during replay.
func (l *Log) AppendEvent(nowMs int64, commandID string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	entry := Entry{EntryType: EntryEvent, TimestampMs: nowMs, CommandID: commandID, Payload: raw}
	return l.appendLine(entry)
}

func (l *Log) appendLine(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := l.writer.Write(raw); err != nil {
		return err
	}
	if err := l.writer.WriteByte('\n'); err != nil {
		return err
	}
	if err := l.writer.Flush(); err != nil {
		l.logger.Error("command log flush failed", zap.Error(err))
		return err
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		return err
	}
	return l.file.Close()
}

// ReadCommands returns every command entry in file order. A missing file
// yields an empty list. Corrupted or partial lines are skipped, never
// fatal.
func ReadCommands(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue // corrupted line: skipped, not fatal
		}
		if entry.EntryType != EntryCommand {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
