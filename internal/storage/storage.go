package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/kennzeichen/internal/record"
)

const (
	DefaultDataDir  = "data"
	DefaultFileName = "raw.json"
)

// FilesystemError reports a failed filesystem operation on the data directory or file
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// Storage handles persistence of the code list
type Storage struct {
	dataDir  string
	fileName string
}

// New creates a new Storage instance. Nothing is touched on disk until a write.
func New(dataDir, fileName string) *Storage {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Storage{
		dataDir:  dataDir,
		fileName: fileName,
	}
}

// Path returns the path of the output file
func (s *Storage) Path() string {
	return filepath.Join(s.dataDir, s.fileName)
}

// EnsureDir creates the data directory if it does not exist. Only the last
// path element is created; a missing parent is an error.
func (s *Storage) EnsureDir() error {
	info, err := os.Stat(s.dataDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return &FilesystemError{Op: "stat", Path: s.dataDir, Err: err}
		}
		if err := os.Mkdir(s.dataDir, 0755); err != nil {
			return &FilesystemError{Op: "mkdir", Path: s.dataDir, Err: err}
		}
		return nil
	}

	if !info.IsDir() {
		return &FilesystemError{Op: "stat", Path: s.dataDir, Err: errors.New("not a directory")}
	}

	return nil
}

// WriteRecords writes the full list to the output file, overwriting it
func (s *Storage) WriteRecords(records []*record.Record) error {
	if err := s.EnsureDir(); err != nil {
		return err
	}

	data, err := Encode(records)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	path := s.Path()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &FilesystemError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// LoadRecords reads a previously written list back from disk
func (s *Storage) LoadRecords() ([]*record.Record, error) {
	path := s.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FilesystemError{Op: "read", Path: path, Err: err}
	}

	var records []*record.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return records, nil
}

// Encode renders records as a JSON array indented by four spaces.
// Non-ASCII text and HTML characters are written unescaped.
func Encode(records []*record.Record) ([]byte, error) {
	if records == nil {
		records = make([]*record.Record, 0)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(records); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
