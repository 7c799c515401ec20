package graph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
)

// fakeCache implements the marshal/unmarshal side of MSAL's cache contract.
type fakeCache struct {
	data         []byte
	unmarshalErr error
	marshalErr   error
	loaded       []byte
	loadCalled   bool
}

func (f *fakeCache) Marshal() ([]byte, error) {
	if f.marshalErr != nil {
		return nil, f.marshalErr
	}
	return f.data, nil
}

func (f *fakeCache) Unmarshal(b []byte) error {
	f.loadCalled = true
	if f.unmarshalErr != nil {
		return f.unmarshalErr
	}
	f.loaded = append([]byte(nil), b...)
	return nil
}

func TestReplaceMissingFileLoadsEmpty(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "cache.json"))
	fc := &fakeCache{}
	if err := store.Replace(context.Background(), fc, cache.ReplaceHints{}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if fc.loadCalled {
		t.Error("expected no unmarshal for a missing cache file")
	}
}

func TestReplaceLoadsPersistedBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"tokens":1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewFileTokenStore(path)
	fc := &fakeCache{}
	if err := store.Replace(context.Background(), fc, cache.ReplaceHints{}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if string(fc.loaded) != `{"tokens":1}` {
		t.Errorf("loaded %q", fc.loaded)
	}
}

func TestReplaceCorruptContentIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewFileTokenStore(path)
	fc := &fakeCache{unmarshalErr: errors.New("bad json")}
	if err := store.Replace(context.Background(), fc, cache.ReplaceHints{}); err != nil {
		t.Fatalf("corrupt cache must load as empty, got %v", err)
	}
}

func TestExportWritesAndSkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	store := NewFileTokenStore(path)
	fc := &fakeCache{data: []byte("blob-1")}
	if err := store.Export(context.Background(), fc, cache.ExportHints{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	if string(got) != "blob-1" {
		t.Errorf("written %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("cache file mode = %o, want 600", perm)
	}
	firstWrite := info.ModTime()

	// Unchanged content must not touch the file.
	if err := store.Export(context.Background(), fc, cache.ExportHints{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	info, err = os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(firstWrite) {
		t.Error("unchanged export rewrote the cache file")
	}

	// Changed content is persisted.
	fc.data = []byte("blob-2")
	if err := store.Export(context.Background(), fc, cache.ExportHints{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, _ = os.ReadFile(path)
	if string(got) != "blob-2" {
		t.Errorf("written %q", got)
	}
}

func TestExportSkipsWhenContentMatchesLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("blob"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewFileTokenStore(path)
	if err := store.Replace(context.Background(), &fakeCache{}, cache.ReplaceHints{}); err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(path)
	loadedAt := info.ModTime()

	if err := store.Export(context.Background(), &fakeCache{data: []byte("blob")}, cache.ExportHints{}); err != nil {
		t.Fatal(err)
	}
	info, _ = os.Stat(path)
	if !info.ModTime().Equal(loadedAt) {
		t.Error("export of just-loaded content rewrote the cache file")
	}
}

func TestClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewFileTokenStore(path)
	if err := store.Export(context.Background(), &fakeCache{data: []byte("blob")}, cache.ExportHints{}); err != nil {
		t.Fatal(err)
	}
	store.Clear()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("cache file still present after Clear: %v", err)
	}
	// Clearing a missing file is a no-op.
	store.Clear()
}
