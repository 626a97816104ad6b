package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rerrors "repolens/internal/errors"
	"repolens/internal/slogutil"
)

func setupTestStore(t *testing.T) (*DB, *AnalysisStore) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), ".repolens", "cache.db"), slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	store, err := NewAnalysisStore(db)
	if err != nil {
		t.Fatalf("NewAnalysisStore() error = %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db, store
}

func TestDatabaseInitialization(t *testing.T) {
	db, _ := setupTestStore(t)

	if _, err := os.Stat(db.Path()); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
	version, err := db.getSchemaVersion()
	if err != nil {
		t.Fatalf("getSchemaVersion() error = %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	db, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewAnalysisStore(db)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put("fp", "1.0.0", "snap", []byte(`{"ok":true}`)); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()
	_ = db.Close()

	db, err = Open(path, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()
	store, err = NewAnalysisStore(db)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	got, ok, err := store.Get("fp", "1.0.0")
	if err != nil || !ok || string(got) != `{"ok":true}` {
		t.Errorf("Get() after reopen = %q, %v, %v", got, ok, err)
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	_, store := setupTestStore(t)
	payload := []byte(strings.Repeat(`{"path":"src/components/Button.tsx","score":42},`, 200))

	if err := store.Put("abc", "1.0.0", "snap-1", payload); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok, err := store.Get("abc", "1.0.0")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("payload changed across round trip")
	}

	list, err := store.List()
	if err != nil || len(list) != 1 {
		t.Fatalf("List() = %v, %v", list, err)
	}
	if list[0].RawSize != len(payload) || len(list[0].Payload) >= len(payload) {
		t.Errorf("stored %d bytes for %d raw, want compression", len(list[0].Payload), list[0].RawSize)
	}
	if list[0].SnapshotID != "snap-1" {
		t.Errorf("SnapshotID = %q", list[0].SnapshotID)
	}
}

func TestAnalysisMisses(t *testing.T) {
	_, store := setupTestStore(t)
	if err := store.Put("abc", "1.0.0", "snap", []byte("x")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		fingerprint string
		version     string
	}{
		{"other", "1.0.0"},
		{"abc", "2.0.0"},
	}
	for _, tt := range tests {
		_, ok, err := store.Get(tt.fingerprint, tt.version)
		if err != nil || ok {
			t.Errorf("Get(%s, %s) = %v, %v; want miss", tt.fingerprint, tt.version, ok, err)
		}
	}
}

func TestAnalysisReplaceDeletePrune(t *testing.T) {
	_, store := setupTestStore(t)
	for _, fp := range []string{"a", "b", "c", "d"} {
		if err := store.Put(fp, "1", "snap-"+fp, []byte(fp)); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Put("a", "1", "snap-a", []byte("a2")); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.Count(); n != 4 {
		t.Fatalf("Count() = %d, want 4", n)
	}

	if err := store.Delete("b"); err != nil {
		t.Fatal(err)
	}
	removed, err := store.Prune(2)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("Prune(2) removed %d, want 1", removed)
	}
	if n, _ := store.Count(); n != 2 {
		t.Errorf("Count() after prune = %d, want 2", n)
	}
	if got, ok, _ := store.Get("a", "1"); !ok || string(got) != "a2" {
		t.Errorf("newest entry lost: %q, %v", got, ok)
	}
}

func TestCorruptPayload(t *testing.T) {
	db, store := setupTestStore(t)
	_, err := db.conn.Exec(`
		INSERT INTO analyses (fingerprint, engine_version, snapshot_id, payload, raw_size, created_at)
		VALUES ('bad', '1', 's', x'00010203', 4, '2026-01-01T00:00:00Z')
	`)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = store.Get("bad", "1")
	if !rerrors.HasCode(err, rerrors.CacheFailure) {
		t.Errorf("Get(corrupt) code = %v, want %v", rerrors.CodeOf(err), rerrors.CacheFailure)
	}
}
