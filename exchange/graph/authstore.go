package graph

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
)

// FileTokenStore persists the MSAL token cache as an opaque blob in a
// single file. The blob is never parsed here; MSAL owns its format.
//
// Cache I/O problems are deliberately non-fatal: a missing or corrupt file
// loads as an empty cache, and a failed write is logged so a transient
// disk issue never blocks returning an already-obtained token.
type FileTokenStore struct {
	path string

	mu sync.Mutex
	// last holds the blob as last loaded or written; Export compares
	// against it so an unchanged cache leaves the file untouched.
	last []byte
}

// NewFileTokenStore returns a store backed by path. Nothing is read until
// MSAL asks for the cache.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: expandPath(path)}
}

// Path returns the resolved cache file location.
func (s *FileTokenStore) Path() string { return s.path }

// Replace loads the persisted cache into MSAL's in-memory cache.
func (s *FileTokenStore) Replace(_ context.Context, c cache.Unmarshaler, _ cache.ReplaceHints) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[exchange] failed to read token cache %s: %v", s.path, err)
		}
		s.last = nil
		return nil
	}
	if err := c.Unmarshal(data); err != nil {
		// Corrupt content is an empty cache, never a fatal error.
		log.Printf("[exchange] token cache %s is unreadable, starting empty: %v", s.path, err)
		s.last = nil
		return nil
	}
	s.last = data
	return nil
}

// Export writes the cache back to disk, but only when it changed since the
// last load or write.
func (s *FileTokenStore) Export(_ context.Context, c cache.Marshaler, _ cache.ExportHints) error {
	data, err := c.Marshal()
	if err != nil {
		log.Printf("[exchange] failed to serialize token cache: %v", err)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if bytes.Equal(data, s.last) {
		return nil
	}
	if err := s.write(data); err != nil {
		log.Printf("[exchange] failed to save token cache %s: %v", s.path, err)
		return nil
	}
	s.last = data
	return nil
}

// write creates the parent directory on demand and replaces the cache file
// atomically via a temp file in the same directory.
func (s *FileTokenStore) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Chmod(0o600)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpName, s.path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Clear removes the cache file. Used on logout.
func (s *FileTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Printf("[exchange] failed to clear token cache %s: %v", s.path, err)
	}
}
