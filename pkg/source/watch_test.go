package source

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/mesa/pkg/guest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "invitados.csv", "nombre,mesa\nAna,1\nLuis,2\n")
	book := guest.NewBook(guest.Default(), guest.BookOptions{Logger: quietLogger()})

	w := NewWatcher(path, Options{}, book, quietLogger())
	if err := w.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if book.Len() != 2 {
		t.Errorf("Len = %d, want 2", book.Len())
	}
}

func TestWatcher_ReloadFailureKeepsList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "invitados.csv", "nombre,mesa\n")
	book := guest.NewBook(guest.Default(), guest.BookOptions{Logger: quietLogger()})

	w := NewWatcher(path, Options{}, book, quietLogger())
	if err := w.Reload(); err == nil {
		t.Fatal("expected error reloading a header-only seed")
	}
	if book.Len() != len(guest.Default()) {
		t.Errorf("Len = %d, want %d (unchanged)", book.Len(), len(guest.Default()))
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "invitados.csv", "nombre,mesa\nAna,1\n")
	book := guest.NewBook(guest.List{{Name: "Ana", Table: "1"}}, guest.BookOptions{Logger: quietLogger()})

	w := NewWatcher(path, Options{}, book, quietLogger())
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	// Unrelated files in the same directory are ignored.
	writeFile(t, dir, "notas.txt", "nombre,mesa\nX,1\nY,2\nZ,3\n")

	if err := os.WriteFile(path, []byte("nombre,mesa\nAna,1\nLuis,2\nSofía,3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for book.Len() != 3 {
		if time.Now().After(deadline) {
			t.Fatalf("Len = %d after write, want 3", book.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcher_StartMissingDir(t *testing.T) {
	book := guest.NewBook(guest.Default(), guest.BookOptions{Logger: quietLogger()})
	w := NewWatcher(filepath.Join(t.TempDir(), "missing", "x.csv"), Options{}, book, quietLogger())
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Error("expected error watching a missing directory")
	}
}
