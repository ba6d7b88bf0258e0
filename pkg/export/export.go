// Package export hands guest data to the host platform: the terminal
// clipboard and exported files. Both are best effort; a failure is logged and
// otherwise ignored.
package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/hazyhaar/mesa/pkg/guest"
)

// ClipboardWriter places text on the user's clipboard.
type ClipboardWriter interface {
	WriteText(ctx context.Context, text string) error
}

// FileExporter delivers a named file to the user.
type FileExporter interface {
	Export(ctx context.Context, name string, data []byte) (string, error)
}

// GuestText is the clipboard text for one guest, e.g. "Ana Lucía — Mesa 3".
func GuestText(g guest.Guest) string {
	return fmt.Sprintf("%s — Mesa %s", g.Name, g.Table)
}

// TableText is the clipboard text for a table, e.g. "Mesa 3".
func TableText(table string) string {
	return "Mesa " + table
}

// Copy writes text to the clipboard and reports whether it succeeded.
func Copy(ctx context.Context, cw ClipboardWriter, text string, logger *slog.Logger) bool {
	if cw == nil {
		return false
	}
	if err := cw.WriteText(ctx, text); err != nil {
		loggerOrDefault(logger).Debug("clipboard write failed", "error", err)
		return false
	}
	return true
}

// Save exports the current list as CSV and returns where it went, or "" on failure.
func Save(ctx context.Context, fe FileExporter, book *guest.Book, logger *slog.Logger) string {
	if fe == nil {
		return ""
	}
	where, err := fe.Export(ctx, guest.ExportFileName, []byte(book.Export()))
	if err != nil {
		loggerOrDefault(logger).Debug("export failed", "error", err)
		return ""
	}
	loggerOrDefault(logger).Info("guest list exported", "path", where, "guests", book.Len())
	return where
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// OSC52 copies through the terminal using the OSC 52 escape sequence, which
// works over SSH and inside tmux when the terminal allows it.
type OSC52 struct {
	mu sync.Mutex
	w  io.Writer
}

// NewOSC52 returns an OSC52 clipboard writing escape sequences to w.
func NewOSC52(w io.Writer) *OSC52 {
	return &OSC52{w: w}
}

func (o *OSC52) WriteText(_ context.Context, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
	_, err := io.WriteString(o.w, seq)
	return err
}

// Dir exports files into a directory. Files are replaced atomically so a
// reader never sees a half-written export.
type Dir struct {
	Path string
}

func (d Dir) Export(_ context.Context, name string, data []byte) (string, error) {
	dir := d.Path
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	dest := filepath.Join(dir, filepath.Base(name))

	pending, err := renameio.NewPendingFile(dest, renameio.WithPermissions(0o644))
	if err != nil {
		return "", fmt.Errorf("create pending export: %w", err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write(data); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("replace export: %w", err)
	}
	return dest, nil
}
