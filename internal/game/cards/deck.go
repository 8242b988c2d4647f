package cards

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Deck size and copy limits for deck lists.
const (
	MinDeckSize = 10
	MaxDeckSize = 30
	MaxCopies   = 2
)

// DeckEntry is one line of a deck list.
type DeckEntry struct {
	ID    string `yaml:"id" json:"id"`
	Count int    `yaml:"count" json:"count"`
}

// DeckList is a named list of cards as stored on disk.
type DeckList struct {
	Name  string      `yaml:"name" json:"name"`
	Cards []DeckEntry `yaml:"cards" json:"cards"`
}

// ParseDeckList decodes a YAML deck list.
func ParseDeckList(r io.Reader) (*DeckList, error) {
	var list DeckList
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode deck list: %w", err)
	}
	return &list, nil
}

// LoadDeckList reads and validates a deck list from a YAML file.
func LoadDeckList(path string) (*DeckList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open deck list: %w", err)
	}
	defer f.Close()

	list, err := ParseDeckList(f)
	if err != nil {
		return nil, err
	}
	if err := list.Validate(); err != nil {
		return nil, fmt.Errorf("deck %q: %w", list.Name, err)
	}
	return list, nil
}

// Size returns the total number of cards in the list.
func (d *DeckList) Size() int {
	total := 0
	for _, e := range d.Cards {
		total += e.Count
	}
	return total
}

// Validate checks card ids, copy counts and deck size. Unknown ids and
// non-positive counts do not count toward the size.
func (d *DeckList) Validate() error {
	var errs []error
	size := 0
	seen := make(map[string]int)
	for _, e := range d.Cards {
		if _, ok := Lookup(e.ID); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownCard, e.ID))
			continue
		}
		if e.Count < 1 {
			errs = append(errs, fmt.Errorf("card %q: count must be positive, got %d", e.ID, e.Count))
			continue
		}
		size += e.Count
		seen[e.ID] += e.Count
		if seen[e.ID] > MaxCopies {
			errs = append(errs, fmt.Errorf("card %q: at most %d copies allowed", e.ID, MaxCopies))
		}
	}
	if size < MinDeckSize || size > MaxDeckSize {
		errs = append(errs, fmt.Errorf("deck size %d outside %d..%d", size, MinDeckSize, MaxDeckSize))
	}
	return errors.Join(errs...)
}

// Expand returns the ordered card ids of the list.
func (d *DeckList) Expand() []string {
	ids := make([]string, 0, d.Size())
	for _, e := range d.Cards {
		for i := 0; i < e.Count; i++ {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Encode writes the list as YAML.
func (d *DeckList) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode deck list: %w", err)
	}
	return enc.Close()
}

// BaseDeckList returns BaseDeck as a deck list.
func BaseDeckList() *DeckList {
	return DeckListFromIDs("base", BaseDeck())
}

// DeckListFromIDs groups a flat list of card ids into a deck list, keeping
// the order of first appearance.
func DeckListFromIDs(name string, ids []string) *DeckList {
	list := &DeckList{Name: name}
	index := make(map[string]int)
	for _, id := range ids {
		if i, ok := index[id]; ok {
			list.Cards[i].Count++
			continue
		}
		index[id] = len(list.Cards)
		list.Cards = append(list.Cards, DeckEntry{ID: id, Count: 1})
	}
	return list
}
