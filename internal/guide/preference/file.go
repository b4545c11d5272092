package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var errCorruptFile = errors.New("corrupt preference file")

// FileBackend stores preferences as one JSON document on disk.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

type fileDocument struct {
	Values      map[string]string `json:"values"`
	LastUpdated time.Time         `json:"last_updated"`

	repair bool
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

func (f *FileBackend) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readForWrite()
	if err != nil {
		return err
	}
	doc.Values[key] = value
	return f.write(doc)
}

func (f *FileBackend) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readForWrite()
	if err != nil {
		return err
	}
	if _, ok := doc.Values[key]; !ok && !doc.repair {
		return nil
	}
	delete(doc.Values, key)
	return f.write(doc)
}

// read returns an empty document when the file does not exist yet.
func (f *FileBackend) read() (*fileDocument, error) {
	doc := &fileDocument{Values: make(map[string]string)}

	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open preference file: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", errCorruptFile, err)
	}
	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}
	return doc, nil
}

// readForWrite starts over from an empty document when the file cannot be
// decoded, so the next write repairs it.
func (f *FileBackend) readForWrite() (*fileDocument, error) {
	doc, err := f.read()
	if errors.Is(err, errCorruptFile) {
		logrus.WithError(err).WithField("path", f.path).Warn("replacing unreadable preference file")
		return &fileDocument{Values: make(map[string]string), repair: true}, nil
	}
	return doc, err
}

// write replaces the file atomically so a crash never leaves half a document.
func (f *FileBackend) write(doc *fileDocument) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create preference directory: %w", err)
	}

	doc.LastUpdated = time.Now()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".preferences-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace preference file: %w", err)
	}
	return nil
}
