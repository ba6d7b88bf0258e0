// Package source loads the startup guest list from a seed file and keeps it
// in sync when the file changes. Seeds are only ever read.
package source

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/mesa/pkg/guest"
	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite"
)

// DefaultSQLiteQuery selects the guest rows from a SQLite seed.
const DefaultSQLiteQuery = `SELECT name, table_id FROM guests ORDER BY rowid`

// Options controls how a seed file is read.
type Options struct {
	// Encoding of CSV seeds (WHATWG label). Empty means UTF-8.
	Encoding string
	// Parser used for CSV seeds.
	Parser guest.Parser
	// SQLiteQuery must return (name, table) rows. Empty means DefaultSQLiteQuery.
	SQLiteQuery string
}

// Load reads the guest list at path. The format follows the extension:
// .csv/.txt, .yaml/.yml, or .db/.sqlite/.sqlite3.
func Load(path string, opts Options) (guest.List, error) {
	var (
		list guest.List
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		list, err = loadCSV(path, opts)
	case ".yaml", ".yml":
		list, err = loadYAML(path)
	case ".db", ".sqlite", ".sqlite3":
		list, err = loadSQLite(path, opts.SQLiteQuery)
	default:
		return nil, fmt.Errorf("seed %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("seed %s: no guests", path)
	}
	return list, nil
}

func loadCSV(path string, opts Options) (guest.List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	text, err := guest.DecodeText(f, opts.Encoding)
	if err != nil {
		return nil, err
	}
	list, ok := opts.Parser.Parse(text)
	if !ok {
		return nil, fmt.Errorf("no name/table columns or no complete rows")
	}
	return list, nil
}

// yamlSeed is the document shape of a YAML seed.
type yamlSeed struct {
	Guests []guest.Guest `yaml:"guests"`
}

func loadYAML(path string) (guest.List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var doc yamlSeed
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return keepComplete(doc.Guests), nil
}

func loadSQLite(path, query string) (guest.List, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if query == "" {
		query = DefaultSQLiteQuery
	}

	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query guests: %w", err)
	}
	defer rows.Close()

	var list guest.List
	for rows.Next() {
		var name, table sql.NullString
		if err := rows.Scan(&name, &table); err != nil {
			return nil, fmt.Errorf("scan guest: %w", err)
		}
		list = append(list, guest.Guest{Name: name.String, Table: table.String})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keepComplete(list), nil
}

// keepComplete trims every field and drops guests missing a name or table,
// the same rule the CSV importer applies to rows.
func keepComplete(in []guest.Guest) guest.List {
	var out guest.List
	for _, g := range in {
		g.Name = strings.TrimSpace(g.Name)
		g.Table = strings.TrimSpace(g.Table)
		if g.Name == "" || g.Table == "" {
			continue
		}
		out = append(out, g)
	}
	return out
}
