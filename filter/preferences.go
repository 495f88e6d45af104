package filter

import (
	"encoding/json"
	"sync"
)

// StorageKey is the key preferences are stored under.
const StorageKey = "recipeFilters"

// Preferences are the gallery control values.
type Preferences struct {
	Search     string `json:"search"`
	Difficulty string `json:"difficulty"`
	Sort       Sort   `json:"sort"`
}

// DefaultPreferences matches every recipe, newest first.
func DefaultPreferences() Preferences {
	return Preferences{Sort: SortNewest}
}

func (p Preferences) normalized() Preferences {
	if !p.Sort.Valid() {
		p.Sort = SortNewest
	}
	return p
}

// Encode serializes preferences for storage.
func Encode(p Preferences) string {
	b, err := json.Marshal(p.normalized())
	if err != nil {
		return ""
	}
	return string(b)
}

// Decode parses stored preferences. Missing fields take their defaults and
// malformed input yields DefaultPreferences.
func Decode(raw string) Preferences {
	var stored struct {
		Search     *string `json:"search"`
		Difficulty *string `json:"difficulty"`
		Sort       *string `json:"sort"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return DefaultPreferences()
	}
	p := DefaultPreferences()
	if stored.Search != nil {
		p.Search = *stored.Search
	}
	if stored.Difficulty != nil {
		p.Difficulty = *stored.Difficulty
	}
	if stored.Sort != nil {
		p.Sort = Sort(*stored.Sort)
	}
	return p.normalized()
}

// Store is durable per-browser key-value storage for one serialized
// Preferences record.
type Store interface {
	// Load returns the stored value and whether one exists.
	Load() (string, bool)
	// Save overwrites the stored value.
	Save(raw string) error
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu  sync.Mutex
	raw string
	set bool
}

// Load implements Store.
func (m *MemoryStore) Load() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw, m.set
}

// Save implements Store.
func (m *MemoryStore) Save(raw string) error {
	m.mu.Lock()
	m.raw = raw
	m.set = true
	m.mu.Unlock()
	return nil
}
