package guest

import (
	"log/slog"
	"sync"
)

// Book owns the current guest list. Readers get copies; writers replace the
// whole list, so a failed import never leaves a partial list behind.
type Book struct {
	mu        sync.RWMutex
	guests    List
	parser    Parser
	collation Collation
	logger    *slog.Logger
}

// BookOptions configures a Book. Zero values select the defaults.
type BookOptions struct {
	Parser    Parser
	Collation Collation
	Logger    *slog.Logger
}

// NewBook creates a Book holding a copy of initial.
func NewBook(initial List, opts BookOptions) *Book {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Book{
		guests:    initial.Clone(),
		parser:    opts.Parser,
		collation: opts.Collation,
		logger:    opts.Logger,
	}
}

// Guests returns a copy of the current list.
func (b *Book) Guests() List {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.guests.Clone()
}

// Len returns the number of guests.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.guests)
}

// Search runs Search over the current list.
func (b *Book) Search(query string) List {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.collation.Search(b.guests, query)
}

// Tables runs GroupByTable over the current list.
func (b *Book) Tables() []Group {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.collation.GroupByTable(b.guests)
}

// Import parses raw and, if it yields at least one guest, replaces the list.
// It reports whether the list changed.
func (b *Book) Import(raw string) bool {
	parsed, ok := b.parser.Parse(raw)
	if !ok {
		b.logger.Info("import ignored, no usable rows")
		return false
	}
	return b.Replace(parsed)
}

// Replace swaps in l. An empty l is refused and the current list is kept.
func (b *Book) Replace(l List) bool {
	if len(l) == 0 {
		return false
	}
	next := l.Clone()

	b.mu.Lock()
	prev := len(b.guests)
	b.guests = next
	b.mu.Unlock()

	b.logger.Info("guest list replaced", "previous", prev, "guests", len(next))
	return true
}

// Export serializes the current list with SerializeList.
func (b *Book) Export() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return SerializeList(b.guests)
}
