package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndGet(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	id, err := archive.Save(CaptureRecord{
		WindowLabel:  "main",
		Strategy:     "native",
		Width:        800,
		Height:       600,
		ImageDataURL: "data:image/jpeg;base64,abc",
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" {
		t.Fatal("Save returned empty id")
	}

	rec, err := archive.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ID != id {
		t.Fatalf("rec.ID=%q, want %q", rec.ID, id)
	}
	if rec.WindowLabel != "main" || rec.Strategy != "native" {
		t.Fatalf("rec=%+v, want label main strategy native", rec)
	}
	if rec.Timestamp.IsZero() {
		t.Fatal("Save did not stamp the record")
	}
}

func TestListNewestFirst(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	for _, label := range []string{"first", "second", "third"} {
		if _, err := archive.Save(CaptureRecord{WindowLabel: label}); err != nil {
			t.Fatalf("Save %s: %v", label, err)
		}
	}

	list, err := archive.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(list)=%d, want 3", len(list))
	}
	if list[0].WindowLabel != "third" || list[2].WindowLabel != "first" {
		t.Fatalf("list order = %q, %q, %q; want newest first", list[0].WindowLabel, list[1].WindowLabel, list[2].WindowLabel)
	}
}

func TestListSkipsMalformedEntries(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir, 10)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	if _, err := archive.Save(CaptureRecord{WindowLabel: "main"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write broken entry: %v", err)
	}

	list, err := archive.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list)=%d, want 1", len(list))
	}
}

func TestDelete(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	id, err := archive.Save(CaptureRecord{WindowLabel: "main"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := archive.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := archive.Get(id); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Get after delete err=%v, want fs.ErrNotExist", err)
	}
}

func TestPruneKeepsCap(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := archive.Save(CaptureRecord{WindowLabel: "main"}); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}
	list, err := archive.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(list)=%d, want 3", len(list))
	}
}

func TestRejectsUnsafeIDs(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	for _, id := range []string{"", "../escape", "a/b", "a b"} {
		if _, err := archive.Get(id); err == nil {
			t.Fatalf("Get(%q) succeeded, want error", id)
		}
		if err := archive.Delete(id); err == nil {
			t.Fatalf("Delete(%q) succeeded, want error", id)
		}
	}
}
