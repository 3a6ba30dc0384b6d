package account

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Defaultable is an entry that can be flagged as a user's primary choice
type Defaultable interface {
	entryID() uuid.UUID
	isDefault() bool
	markDefault(bool)
}

// Book holds one user's saved entries and keeps at most one of them default.
// Mutating methods return the entries whose default flag changed so callers
// persist exactly those.
type Book[T Defaultable] struct {
	entries []T
}

// AddressBook is the set of a user's saved addresses
type AddressBook = Book[*Address]

// PaymentMethodBook is the set of a user's saved payment methods
type PaymentMethodBook = Book[*PaymentMethod]

// NewBook loads entries. If stored data has several defaults only the first is kept.
func NewBook[T Defaultable](entries []T) *Book[T] {
	b := &Book[T]{entries: append([]T(nil), entries...)}
	found := false
	for _, e := range b.entries {
		if e.isDefault() {
			if found {
				e.markDefault(false)
			}
			found = true
		}
	}
	return b
}

// Add appends entry. The first entry, or one already flagged default, becomes the default.
func (b *Book[T]) Add(entry T) []T {
	wantDefault := entry.isDefault() || len(b.entries) == 0
	entry.markDefault(false)
	b.entries = append(b.entries, entry)
	if !wantDefault {
		return []T{entry}
	}
	changed, _ := b.SetDefault(entry.entryID())
	return changed
}

// SetDefault makes id the only default entry
func (b *Book[T]) SetDefault(id uuid.UUID) ([]T, error) {
	if b.index(id) < 0 {
		return nil, shared.ErrNotFound
	}
	var changed []T
	for _, e := range b.entries {
		want := e.entryID() == id
		if e.isDefault() != want {
			e.markDefault(want)
			changed = append(changed, e)
		}
	}
	return changed, nil
}

// Remove deletes id. When the default is removed the first remaining entry is promoted.
func (b *Book[T]) Remove(id uuid.UUID) ([]T, error) {
	i := b.index(id)
	if i < 0 {
		return nil, shared.ErrNotFound
	}
	wasDefault := b.entries[i].isDefault()
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	if wasDefault && len(b.entries) > 0 {
		b.entries[0].markDefault(true)
		return []T{b.entries[0]}, nil
	}
	return nil, nil
}

// Default returns the default entry if one is flagged
func (b *Book[T]) Default() (T, bool) {
	for _, e := range b.entries {
		if e.isDefault() {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// Preferred returns the default entry, else the first one
func (b *Book[T]) Preferred() (T, bool) {
	if d, ok := b.Default(); ok {
		return d, true
	}
	if len(b.entries) > 0 {
		return b.entries[0], true
	}
	var zero T
	return zero, false
}

// Find returns the entry with id
func (b *Book[T]) Find(id uuid.UUID) (T, bool) {
	if i := b.index(id); i >= 0 {
		return b.entries[i], true
	}
	var zero T
	return zero, false
}

func (b *Book[T]) Entries() []T {
	return append([]T(nil), b.entries...)
}

func (b *Book[T]) Len() int {
	return len(b.entries)
}

// DefaultCount is exposed for invariant checks
func (b *Book[T]) DefaultCount() int {
	n := 0
	for _, e := range b.entries {
		if e.isDefault() {
			n++
		}
	}
	return n
}

func (b *Book[T]) index(id uuid.UUID) int {
	for i, e := range b.entries {
		if e.entryID() == id {
			return i
		}
	}
	return -1
}
