package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockTimeout bounds how long a FileSettings operation waits for the lock
// held by another process.
const LockTimeout = 2 * time.Second

// FileSettings stores settings as one JSON object on disk. Every operation
// takes an exclusive file lock and re-reads the document, so several dex
// processes can share one file. Writes go to a temp file and are renamed
// into place.
type FileSettings struct {
	path string
}

var _ Settings = (*FileSettings)(nil)

// NewFileSettings returns a FileSettings rooted at path. The file and its
// parent directory are created on first write.
func NewFileSettings(path string) *FileSettings {
	return &FileSettings{path: path}
}

// Path returns the settings file path.
func (f *FileSettings) Path() string {
	return f.path
}

func (f *FileSettings) lockPath() string {
	return f.path + ".lock"
}

// Get reads a single key.
func (f *FileSettings) Get(key string) ([]byte, bool, error) {
	var out []byte
	err := f.withLock(func() error {
		doc, err := f.read()
		if err != nil {
			return err
		}
		if v, ok := doc[key]; ok {
			out = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

// Set writes a single key. value must be valid JSON.
func (f *FileSettings) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("settings %s: value is not valid JSON", key)
	}
	return f.withLock(func() error {
		doc, err := f.read()
		if err != nil {
			return err
		}
		doc[key] = append(json.RawMessage{}, value...)
		return f.write(doc)
	})
}

// Delete removes a single key. Missing keys are not an error.
func (f *FileSettings) Delete(key string) error {
	return f.withLock(func() error {
		doc, err := f.read()
		if err != nil {
			return err
		}
		if _, ok := doc[key]; !ok {
			return nil
		}
		delete(doc, key)
		return f.write(doc)
	})
}

// withLock runs fn while holding the exclusive lock on the settings file.
func (f *FileSettings) withLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	fl := flock.New(f.lockPath())
	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		return fmt.Errorf("locking %s: %w", f.path, err)
	}
	if !locked {
		return fmt.Errorf("locking %s: timed out after %s", f.path, LockTimeout)
	}
	defer fl.Unlock()

	return fn()
}

// read loads the document. A missing file is an empty document.
func (f *FileSettings) read() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", f.path, err)
	}
	return doc, nil
}

// write replaces the document atomically.
func (f *FileSettings) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
