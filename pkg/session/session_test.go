package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hazyhaar/mesa/pkg/export"
	"github.com/hazyhaar/mesa/pkg/guest"
)

type recordingClipboard struct {
	texts []string
}

func (r *recordingClipboard) WriteText(_ context.Context, text string) error {
	r.texts = append(r.texts, text)
	return nil
}

func newModel(t *testing.T, opts Options) (Model, *guest.Book) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts.Logger = logger
	book := guest.NewBook(guest.Default(), guest.BookOptions{Logger: logger})
	return New(book, opts), book
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func key(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: k})
}

// command types line followed by Enter.
func command(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	return key(t, typeText(t, m, line), tea.KeyEnter)
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestSearchAsYouType(t *testing.T) {
	m, _ := newModel(t, Options{})

	m = typeText(t, m, "rodriguez")
	view := m.View()
	for _, want := range []string{" 1. Luis Rodríguez — Tu mesa: 1\n", " 2. Rafael Rodríguez — Tu mesa: 2\n"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if m.Mode() != ModeSearch || m.Query() != "rodriguez" {
		t.Errorf("mode = %v, query = %q", m.Mode(), m.Query())
	}
}

func TestSearchNoMatch(t *testing.T) {
	m, _ := newModel(t, Options{})
	m = typeText(t, m, "zzz")
	if !strings.Contains(m.View(), "No encontramos ese nombre") {
		t.Errorf("view = %q", m.View())
	}
}

func TestSearchCap(t *testing.T) {
	m, book := newModel(t, Options{MaxResults: 3})

	var b strings.Builder
	b.WriteString("nombre,mesa\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "Invitado %02d,%d\n", i, i%4+1)
	}
	if !book.Import(b.String()) {
		t.Fatal("Import failed")
	}

	m = typeText(t, m, "invitado")
	view := m.View()
	if strings.Count(view, "— Tu mesa:") != 3 {
		t.Errorf("want 3 results:\n%s", view)
	}
	if !strings.Contains(view, "Mostrando 3 resultados. Afina tu búsqueda para ver menos.") {
		t.Errorf("missing cap note:\n%s", view)
	}
}

func TestEmptyQueryShowsNoResults(t *testing.T) {
	m, _ := newModel(t, Options{})
	view := m.View()
	if strings.Contains(view, "Tu mesa:") || strings.Contains(view, "No encontramos") {
		t.Errorf("view = %q, want no results", view)
	}
}

func TestListMode(t *testing.T) {
	m, book := newModel(t, Options{})
	book.Import("nombre,mesa\nB,10\nA,2\nC,2\n")

	m, _ = command(t, m, ":lista")
	if m.Mode() != ModeList {
		t.Fatalf("mode = %v, want list", m.Mode())
	}
	view := m.View()
	i2, i10 := strings.Index(view, "Mesa 2"), strings.Index(view, "Mesa 10")
	if i2 < 0 || i10 < 0 || i2 > i10 {
		t.Errorf("tables out of order:\n%s", view)
	}
	if !strings.Contains(view, "  A\n") || !strings.Contains(view, "  C\n") {
		t.Errorf("guests missing:\n%s", view)
	}

	m, _ = command(t, m, ":buscar")
	if m.Mode() != ModeSearch {
		t.Errorf("mode = %v, want search", m.Mode())
	}

	m, _ = key(t, m, tea.KeyTab)
	if m.Mode() != ModeList {
		t.Errorf("Tab: mode = %v, want list", m.Mode())
	}
	m = typeText(t, m, "a")
	if m.Mode() != ModeSearch {
		t.Errorf("typing: mode = %v, want search", m.Mode())
	}
}

func TestCommandKeepsQuery(t *testing.T) {
	m, _ := newModel(t, Options{})

	m = typeText(t, m, "wong")
	m = typeText(t, m, ":ay")
	if m.Query() != "wong" {
		t.Fatalf("typing a command changed the query to %q", m.Query())
	}
	if !strings.Contains(m.View(), "Marcelo Wong") {
		t.Errorf("results hidden while typing a command:\n%s", m.View())
	}

	m, _ = key(t, m, tea.KeyEsc)
	if m.Query() != "wong" || m.input.Value() != "wong" {
		t.Errorf("Esc on a command: query = %q, input = %q", m.Query(), m.input.Value())
	}

	m, _ = key(t, m, tea.KeyEsc)
	if m.Query() != "" {
		t.Errorf("Esc on the query: query = %q, want empty", m.Query())
	}
}

func TestUnknownCommand(t *testing.T) {
	m, _ := newModel(t, Options{})
	m, _ = command(t, m, ":desconocido")
	if !strings.Contains(m.Status(), `Comando desconocido "desconocido"`) {
		t.Errorf("status = %q", m.Status())
	}
}

func TestHelp(t *testing.T) {
	m, _ := newModel(t, Options{})
	m, _ = command(t, m, ":ayuda")
	if !strings.Contains(m.View(), ":pegar") {
		t.Errorf("help missing :pegar:\n%s", m.View())
	}
}

func TestCopy(t *testing.T) {
	clip := &recordingClipboard{}
	m, _ := newModel(t, Options{Clipboard: clip})

	m = typeText(t, m, "lucia")
	m, _ = command(t, m, ":copiar 1")
	if m.Status() != "¡Copiado! Ana Lucía — Mesa 3" {
		t.Errorf("status = %q", m.Status())
	}
	m, _ = command(t, m, ":copiar mesa 3")
	m, _ = command(t, m, ":copiar 9")
	if !strings.Contains(m.Status(), "Indica el número de un resultado (1-1)") {
		t.Errorf("bad index: status = %q", m.Status())
	}

	want := []string{"Ana Lucía — Mesa 3", "Mesa 3"}
	if strings.Join(clip.texts, "|") != strings.Join(want, "|") {
		t.Errorf("clipboard = %q, want %q", clip.texts, want)
	}
}

func TestCopyUnknownTable(t *testing.T) {
	clip := &recordingClipboard{}
	m, _ := newModel(t, Options{Clipboard: clip})

	m, _ = command(t, m, ":copiar mesa 99")
	if m.Status() != "No existe la mesa 99." {
		t.Errorf("status = %q", m.Status())
	}
	if len(clip.texts) != 0 {
		t.Errorf("clipboard = %q, want nothing", clip.texts)
	}
}

func TestCopyWithoutResults(t *testing.T) {
	clip := &recordingClipboard{}
	m, _ := newModel(t, Options{Clipboard: clip})

	m, _ = command(t, m, ":copiar 1")
	if m.Status() != "No hay resultados para copiar. Busca un nombre primero." {
		t.Errorf("status = %q", m.Status())
	}

	m = typeText(t, m, "lucia")
	m, _ = key(t, m, tea.KeyEsc)
	m, _ = command(t, m, ":copiar 1")
	if len(clip.texts) != 0 {
		t.Errorf("copied after clearing the query: %q", clip.texts)
	}
}

func TestCopyAfterReload(t *testing.T) {
	clip := &recordingClipboard{}
	m, book := newModel(t, Options{Clipboard: clip})

	m = typeText(t, m, "lucia")
	// The file watcher replaces the list behind the session's back.
	book.Replace(guest.List{{Name: "Lucía Nueva", Table: "8"}})

	m, _ = command(t, m, ":copiar 1")
	want := []string{"Lucía Nueva — Mesa 8"}
	if strings.Join(clip.texts, "|") != strings.Join(want, "|") {
		t.Errorf("clipboard = %q, want %q", clip.texts, want)
	}
	if !strings.Contains(m.View(), "Lucía Nueva — Tu mesa: 8") {
		t.Errorf("view not refreshed:\n%s", m.View())
	}
}

func TestPasteImport(t *testing.T) {
	m, book := newModel(t, Options{})

	m, _ = command(t, m, ":pegar")
	if !m.Pasting() {
		t.Fatal("paste panel not open")
	}
	if got := m.paste.Value(); got != book.Export() {
		t.Errorf("paste panel = %q, want current list", got)
	}
	if !strings.Contains(m.View(), "Cargar lista (CSV)") {
		t.Errorf("view:\n%s", m.View())
	}

	m.paste.SetValue("invitado,mesa\nJosé,7\nMaría,7")
	m, _ = key(t, m, tea.KeyCtrlS)
	if m.Pasting() {
		t.Error("paste panel still open")
	}
	if m.Status() != "Lista actualizada: 2 invitados." {
		t.Errorf("status = %q", m.Status())
	}
	if book.Len() != 2 || book.Guests()[0].Name != "José" {
		t.Errorf("guests = %v", book.Guests())
	}
}

func TestPasteImportUnreadable(t *testing.T) {
	m, book := newModel(t, Options{})
	before := book.Guests()

	m, _ = command(t, m, ":pegar")
	m.paste.SetValue("a,b\nfoo,1")
	m, _ = key(t, m, tea.KeyCtrlS)
	if !strings.HasPrefix(m.Status(), "No se pudo leer la lista") {
		t.Errorf("status = %q", m.Status())
	}
	if book.Len() != len(before) {
		t.Errorf("list changed: %d guests, want %d", book.Len(), len(before))
	}
}

func TestPasteCancel(t *testing.T) {
	m, book := newModel(t, Options{})

	m, _ = command(t, m, ":pegar")
	m.paste.SetValue("nombre,mesa\nX,1")
	m, _ = key(t, m, tea.KeyEsc)
	if m.Pasting() || m.Status() != "Carga cancelada." {
		t.Errorf("pasting = %v, status = %q", m.Pasting(), m.Status())
	}
	if book.Len() != 12 {
		t.Errorf("cancel changed the list: %d guests", book.Len())
	}
}

func TestImportFileAndExport(t *testing.T) {
	dir := t.TempDir()
	m, book := newModel(t, Options{Files: export.Dir{Path: dir}, Encoding: "windows-1252"})

	good := filepath.Join(dir, "nueva.csv")
	if err := os.WriteFile(good, []byte("invitado,mesa\nJos\xe9,7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "mala.csv")
	if err := os.WriteFile(bad, []byte("a,b\nfoo,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, _ = command(t, m, ":importar "+bad)
	if book.Len() != 12 || !strings.HasPrefix(m.Status(), "No se pudo leer la lista") {
		t.Errorf("bad import changed list or was not reported: %q", m.Status())
	}

	m, _ = command(t, m, ":importar "+filepath.Join(dir, "missing.csv"))
	if !strings.HasPrefix(m.Status(), "No se pudo abrir") {
		t.Errorf("missing file not reported: %q", m.Status())
	}

	m, _ = command(t, m, ":importar "+good)
	if book.Len() != 1 || book.Guests()[0].Name != "José" {
		t.Fatalf("guests = %v", book.Guests())
	}

	m, _ = command(t, m, ":exportar")
	path := filepath.Join(dir, guest.ExportFileName)
	if m.Status() != "Lista guardada en "+path+"." {
		t.Errorf("status = %q", m.Status())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "nombre,mesa\nJosé,7" {
		t.Errorf("export = %q", data)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, Options{})

	if _, cmd := command(t, m, ":salir"); !isQuit(cmd) {
		t.Error(":salir did not quit")
	}
	if _, cmd := key(t, m, tea.KeyCtrlC); !isQuit(cmd) {
		t.Error("Ctrl+C did not quit")
	}
	m, _ = command(t, m, ":pegar")
	if _, cmd := key(t, m, tea.KeyCtrlC); !isQuit(cmd) {
		t.Error("Ctrl+C in the paste panel did not quit")
	}
}

func TestBanner(t *testing.T) {
	m, _ := newModel(t, Options{Event: Event{
		Title: "Lucho & Caro",
		Date:  "18 de octubre de 2025",
		Venue: "Casino de Pimentel, Perú",
	}})
	view := m.View()
	for _, want := range []string{"Lucho & Caro", "18 de octubre de 2025 • Casino de Pimentel, Perú\n"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRun_Quit(t *testing.T) {
	m, _ := newModel(t, Options{})

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), m, strings.NewReader("wong\r:salir\r"), io.Discard)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after :salir")
	}
}

func TestRun_ContextCancelWhileWaitingForInput(t *testing.T) {
	m, _ := newModel(t, Options{})
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, m, pr, io.Discard) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run still blocked after the context was cancelled")
	}
}
