package stream

import (
	"sort"
	"sync"

	"watchstream/internal/market"
)

type entry struct {
	conn *Connection
	// symbols is replaced wholesale on update and never mutated in place, so
	// a snapshot taken under the read lock stays consistent after unlock.
	symbols map[string]struct{}
}

// Registry maps a subscriber identity to its live connection and symbol set.
// A single RWMutex guards the table; callbacks run outside it.
//
// Superseded connections no longer receive events but stay tracked in
// retired until their session releases them, so CloseAll still reaches them.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	retired map[*Connection]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
		retired: make(map[*Connection]struct{}),
	}
}

func symbolSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range market.CanonicalAll(symbols) {
		set[s] = struct{}{}
	}
	return set
}

// Register inserts or replaces the entry for identity. A replaced connection is
// not closed here; its own session notices its transport going away.
// It returns the superseded connection, if any.
func (r *Registry) Register(identity string, conn *Connection, symbols []string) *Connection {
	set := symbolSet(symbols)

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.entries[identity]
	r.entries[identity] = entry{conn: conn, symbols: set}
	delete(r.retired, conn)
	if ok && prev.conn != conn {
		r.retired[prev.conn] = struct{}{}
		return prev.conn
	}
	return nil
}

// Unregister removes identity. Unknown identities are ignored.
func (r *Registry) Unregister(identity string) {
	r.mu.Lock()
	delete(r.entries, identity)
	r.mu.Unlock()
}

// Release removes identity only while conn is still its registered connection.
// A superseded conn is forgotten without touching its successor.
func (r *Registry) Release(identity string, conn *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.retired, conn)
	e, ok := r.entries[identity]
	if !ok || e.conn != conn {
		return false
	}
	delete(r.entries, identity)
	return true
}

// UpdateSymbols atomically replaces the symbol set of identity. It reports
// whether identity was registered.
func (r *Registry) UpdateSymbols(identity string, symbols []string) bool {
	set := symbolSet(symbols)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[identity]
	if !ok {
		return false
	}
	e.symbols = set
	r.entries[identity] = e
	return true
}

// Symbols returns the sorted symbol set of identity.
func (r *Registry) Symbols(identity string) []string {
	r.mu.RLock()
	e, ok := r.entries[identity]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	out := make([]string, 0, len(e.symbols))
	for s := range e.symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ForEachSubscriber calls fn once for every connection whose symbol set held
// symbol when the call started.
func (r *Registry) ForEachSubscriber(symbol string, fn func(identity string, conn *Connection)) {
	symbol = market.Canonical(symbol)

	type target struct {
		identity string
		conn     *Connection
	}

	r.mu.RLock()
	targets := make([]target, 0, len(r.entries))
	for id, e := range r.entries {
		if _, ok := e.symbols[symbol]; ok {
			targets = append(targets, target{identity: id, conn: e.conn})
		}
	}
	r.mu.RUnlock()

	for _, t := range targets {
		fn(t.identity, t.conn)
	}
}

// Get returns the connection registered for identity.
func (r *Registry) Get(identity string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[identity]
	return e.conn, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// CloseAll closes and removes every connection, superseded ones included.
// Used on process shutdown.
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.entries)+len(r.retired))
	for id, e := range r.entries {
		conns = append(conns, e.conn)
		delete(r.entries, id)
	}
	for c := range r.retired {
		conns = append(conns, c)
		delete(r.retired, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	return len(conns)
}
