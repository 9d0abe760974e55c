// Package history persists transfer outcomes and the last browsed
// directory across sessions.
package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Melal1/adb-tui/internal/logging"
)

const (
	historyFileName = "history.csv"
	lastDirFileName = "lastdir"
)

// Record is one finished pull.
type Record struct {
	Timestamp  time.Time
	RemotePath string
	Dest       string
	Bytes      int64
	Outcome    string // completed, failed, cancelled
	Error      string
}

// Store appends transfer records to a CSV file under the config
// directory. Appending keeps writes cheap and the file greppable.
type Store struct {
	dir string
	log *logging.Logger
	mu  sync.Mutex
}

// NewStore creates a history store rooted at dir. The directory is
// created on first write, not here.
func NewStore(dir string, log *logging.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Record appends one transfer outcome. Satisfies transfer.Recorder.
// Persistence failures are logged and swallowed; history is never worth
// failing a transfer over.
func (s *Store) Record(remotePath, dest string, bytes int64, outcome string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	rec := Record{
		Timestamp:  time.Now(),
		RemotePath: remotePath,
		Dest:       dest,
		Bytes:      bytes,
		Outcome:    outcome,
		Error:      errMsg,
	}

	if writeErr := s.append(rec); writeErr != nil && s.log != nil {
		s.log.Warn().Err(writeErr).Msg("failed to record transfer history")
	}
}

func (s *Store) append(rec Record) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	path := filepath.Join(s.dir, historyFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		rec.Timestamp.Format(time.RFC3339),
		rec.RemotePath,
		rec.Dest,
		strconv.FormatInt(rec.Bytes, 10),
		rec.Outcome,
		rec.Error,
	}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Load reads all history records, oldest first. A missing file is an
// empty history, not an error.
func (s *Store) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, historyFileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("corrupt history file %s: %w", path, err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			continue
		}
		bytes, _ := strconv.ParseInt(row[3], 10, 64)
		records = append(records, Record{
			Timestamp:  ts,
			RemotePath: row[1],
			Dest:       row[2],
			Bytes:      bytes,
			Outcome:    row[4],
			Error:      row[5],
		})
	}
	return records, nil
}

// SaveLastDir remembers the directory the browser was in on quit. It
// becomes the default path for listings that name no directory.
func (s *Store) SaveLastDir(remotePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return
	}
	path := filepath.Join(s.dir, lastDirFileName)
	if err := os.WriteFile(path, []byte(remotePath+"\n"), 0o600); err != nil && s.log != nil {
		s.log.Warn().Err(err).Msg("failed to save last directory")
	}
}

// LastDir returns the previously saved directory, or "" when none was
// saved.
func (s *Store) LastDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, lastDirFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
