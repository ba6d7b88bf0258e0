// Package session is the interactive terminal front end. It is a bubbletea
// model that owns the query, the search/list toggle and the paste panel, and
// renders what the guest package computes from the shared Book.
//
// The list is never cached: every frame and every :copiar reads the Book, so
// a reload by the file watcher shows up on the next refresh tick.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazyhaar/mesa/pkg/export"
	"github.com/hazyhaar/mesa/pkg/guest"
)

// DefaultMaxResults caps how many search results are shown.
const DefaultMaxResults = 25

const refreshInterval = time.Second

// Mode selects what the session shows.
type Mode int

const (
	ModeSearch Mode = iota
	ModeList
)

func (m Mode) String() string {
	if m == ModeList {
		return "list"
	}
	return "search"
}

// Event describes the occasion shown in the banner.
type Event struct {
	Title string
	Date  string
	Venue string
}

// Options configures a Model.
type Options struct {
	MaxResults int
	Encoding   string // encoding of files read by :importar
	Event      Event
	Clipboard  export.ClipboardWriter
	Files      export.FileExporter
	Logger     *slog.Logger
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	tableStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)
)

const helpText = `Escribe un nombre para buscar tu mesa.
  Tab                cambiar entre búsqueda y lista
  Esc                borrar la búsqueda
  :buscar            buscar por nombre
  :lista             ver lista por mesas
  :limpiar           borrar la búsqueda
  :copiar N          copiar el resultado N
  :copiar mesa T     copiar la mesa T
  :importar ARCHIVO  cargar lista (CSV con columnas nombre y mesa)
  :pegar             pegar la lista como texto
  :exportar          descargar CSV actual
  :salir             terminar (también Ctrl+C)
`

type refreshMsg struct{}

// Model is the UI state for one user at a terminal.
type Model struct {
	book *guest.Book
	opts Options
	ctx  context.Context

	mode    Mode
	query   string
	input   textinput.Model
	paste   textarea.Model
	pasting bool
	help    bool
	status  string
}

// New creates a session model over book.
func New(book *guest.Book, opts Options) Model {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Escribe tu nombre y apellidos"
	in.Focus()

	ta := textarea.New()
	ta.Placeholder = "nombre,mesa"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetHeight(12)

	return Model{book: book, opts: opts, ctx: context.Background(), input: in, paste: ta}
}

// Run drives m on in and out until the user quits or ctx is cancelled.
func Run(ctx context.Context, m Model, in io.Reader, out io.Writer) error {
	m.ctx = ctx
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

// Mode returns the current mode.
func (m Model) Mode() Mode { return m.mode }

// Query returns the current query.
func (m Model) Query() string { return m.query }

// Pasting reports whether the paste panel is open.
func (m Model) Pasting() bool { return m.pasting }

// Status returns the last feedback line.
func (m Model) Status() string { return m.status }

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, refresh())
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		return m, refresh()
	case tea.WindowSizeMsg:
		if msg.Width > 2 {
			m.paste.SetWidth(msg.Width - 2)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.pasting {
			return m.updatePaste(msg)
		}
		switch msg.Type {
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyTab:
			if m.mode == ModeList {
				m.mode = ModeSearch
			} else {
				m.mode = ModeList
			}
			m.help = false
			return m, nil
		case tea.KeyEsc:
			if m.commanding() {
				m.restoreQuery()
			} else {
				m.clear()
			}
			return m, nil
		case tea.KeyRunes:
			// ":" starts a command line; the query stays on screen.
			if len(msg.Runes) > 0 && msg.Runes[0] == ':' && !m.commanding() {
				m.input.SetValue("")
			}
		}
	}

	var cmd tea.Cmd
	if m.pasting {
		m.paste, cmd = m.paste.Update(msg)
		return m, cmd
	}
	wasCommand := m.commanding()
	m.input, cmd = m.input.Update(msg)
	v := m.input.Value()
	if wasCommand && v == "" {
		m.restoreQuery()
	} else if !strings.HasPrefix(v, ":") && v != m.query {
		m.query = v
		m.mode = ModeSearch
		m.help = false
		m.status = ""
	}
	return m, cmd
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlS:
		m.importText(m.paste.Value())
		cmd := m.closePaste()
		return m, cmd
	case tea.KeyEsc:
		m.status = "Carga cancelada."
		cmd := m.closePaste()
		return m, cmd
	}
	var cmd tea.Cmd
	m.paste, cmd = m.paste.Update(msg)
	return m, cmd
}

// submit runs the command in the input line. Plain text is already the
// query, so Enter on it does nothing.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	if !strings.HasPrefix(line, ":") {
		return m, nil
	}
	m.restoreQuery()
	m.status = ""
	m.help = false

	cmd, arg, _ := strings.Cut(strings.TrimSpace(line[1:]), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "buscar":
		m.mode = ModeSearch
	case "lista":
		m.mode = ModeList
	case "limpiar":
		m.clear()
	case "copiar":
		m.copy(arg)
	case "importar":
		m.importFile(arg)
	case "pegar":
		focus := m.openPaste()
		return m, focus
	case "exportar":
		m.export()
	case "ayuda":
		m.help = true
	case "salir":
		return m, tea.Quit
	default:
		m.status = fmt.Sprintf("Comando desconocido %q. Escribe :ayuda para ver las opciones.", cmd)
	}
	return m, nil
}

func (m Model) commanding() bool {
	return strings.HasPrefix(m.input.Value(), ":")
}

func (m *Model) restoreQuery() {
	m.input.SetValue(m.query)
	m.input.CursorEnd()
}

func (m *Model) clear() {
	m.query = ""
	m.input.SetValue("")
	m.mode = ModeSearch
	m.help = false
	m.status = ""
}

// shown is the capped result list as it is on screen right now.
func (m Model) shown() (guest.List, int) {
	if m.query == "" {
		return nil, 0
	}
	results := m.book.Search(m.query)
	if len(results) > m.opts.MaxResults {
		return results[:m.opts.MaxResults], len(results)
	}
	return results, len(results)
}

func (m *Model) copy(arg string) {
	var text string
	if table, ok := strings.CutPrefix(arg, "mesa "); ok {
		table = strings.TrimSpace(table)
		if !m.hasTable(table) {
			m.status = fmt.Sprintf("No existe la mesa %s.", table)
			return
		}
		text = export.TableText(table)
	} else {
		shown, _ := m.shown()
		if len(shown) == 0 {
			m.status = "No hay resultados para copiar. Busca un nombre primero."
			return
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(shown) {
			m.status = fmt.Sprintf("Indica el número de un resultado (1-%d) o \"mesa N\".", len(shown))
			return
		}
		text = export.GuestText(shown[n-1])
	}
	if export.Copy(m.ctx, m.opts.Clipboard, text, m.opts.Logger) {
		m.status = "¡Copiado! " + text
	}
}

func (m Model) hasTable(table string) bool {
	for _, grp := range m.book.Tables() {
		if grp.Table == table {
			return true
		}
	}
	return false
}

func (m *Model) importFile(path string) {
	if path == "" {
		m.status = "Uso: :importar <archivo.csv>"
		return
	}
	f, err := os.Open(path)
	if err != nil {
		m.opts.Logger.Debug("open import file", "path", path, "error", err)
		m.status = fmt.Sprintf("No se pudo abrir %s.", path)
		return
	}
	defer f.Close()

	text, err := guest.DecodeText(f, m.opts.Encoding)
	if err != nil {
		m.opts.Logger.Debug("decode import file", "path", path, "error", err)
		m.status = "No se pudo leer la lista. Revisa que tenga columnas nombre y mesa."
		return
	}
	m.importText(text)
}

func (m *Model) importText(text string) {
	if !m.book.Import(text) {
		m.status = "No se pudo leer la lista. Revisa que tenga columnas nombre y mesa."
		return
	}
	m.status = fmt.Sprintf("Lista actualizada: %d invitados.", m.book.Len())
}

// openPaste shows the paste panel pre-filled with the current list.
func (m *Model) openPaste() tea.Cmd {
	m.pasting = true
	m.input.Blur()
	m.paste.SetValue(m.book.Export())
	return m.paste.Focus()
}

func (m *Model) closePaste() tea.Cmd {
	m.pasting = false
	m.paste.Blur()
	return m.input.Focus()
}

func (m *Model) export() {
	if where := export.Save(m.ctx, m.opts.Files, m.book, m.opts.Logger); where != "" {
		m.status = fmt.Sprintf("Lista guardada en %s.", where)
	}
}

func (m Model) View() string {
	var b strings.Builder
	m.banner(&b)

	if m.pasting {
		b.WriteString(titleStyle.Render("Cargar lista (CSV)") + "\n")
		b.WriteString(m.paste.View() + "\n")
		b.WriteString(hintStyle.Render("Ctrl+S actualizar lista • Esc cancelar") + "\n")
		return b.String()
	}

	b.WriteString(m.input.View() + "\n")
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	switch {
	case m.help:
		b.WriteString(helpText)
	case m.mode == ModeList:
		m.renderList(&b)
	default:
		m.renderSearch(&b)
	}
	return b.String()
}

func (m Model) banner(b *strings.Builder) {
	ev := m.opts.Event
	if ev.Title != "" {
		b.WriteString(titleStyle.Render(ev.Title) + "\n")
	}
	var where []string
	for _, v := range []string{ev.Date, ev.Venue} {
		if v != "" {
			where = append(where, v)
		}
	}
	if len(where) > 0 {
		b.WriteString(strings.Join(where, " • ") + "\n")
	}
	b.WriteString("Tu mesa es… Encuéntrala al toque.\n")
	b.WriteString(hintStyle.Render("Tab: lista por mesas • :ayuda • Ctrl+C salir") + "\n\n")
}

func (m Model) renderSearch(b *strings.Builder) {
	if m.query == "" {
		return
	}
	shown, total := m.shown()
	if total == 0 {
		b.WriteString("No encontramos ese nombre. Revisa la ortografía o acércate al personal.\n")
		return
	}
	for i, g := range shown {
		fmt.Fprintf(b, "%2d. %s — Tu mesa: %s\n", i+1, g.Name, g.Table)
	}
	if total > len(shown) {
		fmt.Fprintf(b, "Mostrando %d resultados. Afina tu búsqueda para ver menos.\n", len(shown))
	}
}

func (m Model) renderList(b *strings.Builder) {
	for _, grp := range m.book.Tables() {
		b.WriteString(tableStyle.Render("Mesa "+grp.Table) + "\n")
		for _, g := range grp.Guests {
			b.WriteString("  " + g.Name + "\n")
		}
	}
}
