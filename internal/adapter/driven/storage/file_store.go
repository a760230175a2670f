package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a key/value JSON file, the local equivalent of browser storage.
// Only TokenKey is written through the TokenRepository methods.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore cria um FileStore no caminho indicado.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[TokenKey], nil
}

func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, _, err := s.readForWrite()
	if err != nil {
		return err
	}
	values[TokenKey] = token
	return s.write(values)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, corrupt, err := s.readForWrite()
	if err != nil {
		return err
	}
	if _, ok := values[TokenKey]; !ok && !corrupt {
		return nil
	}
	delete(values, TokenKey)
	return s.write(values)
}

func (s *FileStore) read() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading token store: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("error parsing token store %s: %w", s.path, errCorrupt{err})
	}
	return values, nil
}

// readForWrite is read, except that an unparseable file counts as empty
// (corrupt is true) so the next write replaces it.
func (s *FileStore) readForWrite() (values map[string]string, corrupt bool, err error) {
	values, err = s.read()
	var parseErr errCorrupt
	if errors.As(err, &parseErr) {
		return map[string]string{}, true, nil
	}
	return values, false, err
}

type errCorrupt struct{ err error }

func (e errCorrupt) Error() string { return e.err.Error() }
func (e errCorrupt) Unwrap() error { return e.err }

// write replaces the file atomically with 0600 permissions.
func (s *FileStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("error creating token store directory: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding token store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*")
	if err != nil {
		return fmt.Errorf("error writing token store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing token store: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing token store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing token store: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
