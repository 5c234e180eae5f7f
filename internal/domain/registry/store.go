package registry

// Store holds registered symbols keyed by identity tuple. It is a plain
// in-memory collection: no I/O, no locking (the facade serializes access).
type Store struct {
	symbols map[Identity]*Symbol
}

// NewStore creates an empty symbol store.
func NewStore() *Store {
	return &Store{symbols: make(map[Identity]*Symbol)}
}

// Upsert inserts the symbol or, when one with the same identity exists,
// overlays the incoming fields onto it. Always succeeds.
func (st *Store) Upsert(sym Symbol) {
	id := sym.Identity()
	if existing, ok := st.symbols[id]; ok {
		existing.merge(sym)
		return
	}
	st.symbols[id] = &sym
}

// RemoveByFile deletes every symbol whose SourceFile equals path (exact
// match; callers resolve paths before storing). Returns the removed count.
func (st *Store) RemoveByFile(path string) int {
	removed := 0
	for id, sym := range st.symbols {
		if sym.SourceFile == path {
			delete(st.symbols, id)
			removed++
		}
	}
	return removed
}

// All returns a snapshot copy of the collection. The snapshot does not
// reflect subsequent mutations; iteration order is unspecified.
func (st *Store) All() []Symbol {
	out := make([]Symbol, 0, len(st.symbols))
	for _, sym := range st.symbols {
		cp := *sym
		if cp.Detail != nil {
			cp.Detail = cp.Detail.clone()
		}
		out = append(out, cp)
	}
	return out
}

// Len returns the number of stored symbols.
func (st *Store) Len() int { return len(st.symbols) }

// Clear empties the collection.
func (st *Store) Clear() {
	st.symbols = make(map[Identity]*Symbol)
}
