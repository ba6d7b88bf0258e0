package guest

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultHeader is the header line written by SerializeList.
const DefaultHeader = "nombre,mesa"

// ExportFileName is the file name suggested for exported lists.
const ExportFileName = "invitados_mesas.csv"

// Header synonyms recognized by the default parser, in normalized form.
var (
	DefaultNameHeaders  = []string{"nombre", "invitado", "guest"}
	DefaultTableHeaders = []string{"mesa", "table"}
)

// Parser reads pasted comma-separated guest lists. A column is recognized
// when its normalized header contains one of the synonyms. Quoted fields are
// not supported: every comma is a separator.
type Parser struct {
	NameHeaders  []string
	TableHeaders []string
}

// DefaultParser recognizes DefaultNameHeaders and DefaultTableHeaders.
var DefaultParser = Parser{NameHeaders: DefaultNameHeaders, TableHeaders: DefaultTableHeaders}

// ParseList parses raw with DefaultParser.
func ParseList(raw string) (List, bool) {
	return DefaultParser.Parse(raw)
}

// Parse returns the guests in raw and true, or nil and false when raw cannot
// replace the current list: no data rows, a missing name or table column, or
// no row with both fields filled in. Rows that are too short or have an empty
// name or table are skipped.
func (p Parser) Parse(raw string) (List, bool) {
	lines := splitLines(raw)
	if len(lines) <= 1 {
		return nil, false
	}

	header := strings.Split(lines[0], ",")
	for i := range header {
		header[i] = Normalize(header[i])
	}
	nameIdx := findColumn(header, p.nameHeaders())
	tableIdx := findColumn(header, p.tableHeaders())
	if nameIdx == -1 || tableIdx == -1 {
		return nil, false
	}

	var parsed List
	for _, line := range lines[1:] {
		cols := strings.Split(line, ",")
		if nameIdx >= len(cols) || tableIdx >= len(cols) {
			continue
		}
		name := strings.TrimSpace(cols[nameIdx])
		table := strings.TrimSpace(cols[tableIdx])
		if name == "" || table == "" {
			continue
		}
		parsed = append(parsed, Guest{Name: name, Table: table})
	}
	if len(parsed) == 0 {
		return nil, false
	}
	return parsed, true
}

func (p Parser) nameHeaders() []string {
	if len(p.NameHeaders) == 0 {
		return DefaultNameHeaders
	}
	return p.NameHeaders
}

func (p Parser) tableHeaders() []string {
	if len(p.TableHeaders) == 0 {
		return DefaultTableHeaders
	}
	return p.TableHeaders
}

// splitLines splits on \n or \r\n and drops blank lines.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func findColumn(header, synonyms []string) int {
	for i, h := range header {
		for _, s := range synonyms {
			if strings.Contains(h, Normalize(s)) {
				return i
			}
		}
	}
	return -1
}

// SerializeList writes l as DefaultHeader followed by one "name,table" line
// per guest, in list order. Fields containing commas or line breaks do not
// survive a round trip through ParseList.
func SerializeList(l List) string {
	var b strings.Builder
	b.WriteString(DefaultHeader)
	b.WriteByte('\n')
	for i, g := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(g.Name)
		b.WriteByte(',')
		b.WriteString(g.Table)
	}
	return b.String()
}

// DecodeText reads r and returns its contents as UTF-8. encoding is a WHATWG
// label such as "windows-1252" or "latin1"; empty or UTF-8 labels pass the
// bytes through unchanged.
func DecodeText(r io.Reader, encoding string) (string, error) {
	if encoding != "" && !isUTF8(encoding) {
		e, err := htmlindex.Get(encoding)
		if err != nil {
			return "", fmt.Errorf("unsupported encoding %q: %w", encoding, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read list: %w", err)
	}
	return string(data), nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
