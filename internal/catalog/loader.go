package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Loader reads the card and set catalog files.
type Loader struct {
	CardsPath string
	SetsPaths []string // Merged in order, later files win
	Rules     CombineRules
}

// NewLoader creates a loader for the given catalog files. setsPaths may be
// empty when no set metadata is available; empty entries are ignored.
func NewLoader(cardsPath string, rules CombineRules, setsPaths ...string) *Loader {
	paths := make([]string, 0, len(setsPaths))
	for _, p := range setsPaths {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return &Loader{
		CardsPath: cardsPath,
		SetsPaths: paths,
		Rules:     rules,
	}
}

// Load reads the card file and every set metadata file and builds a registry.
// A missing set metadata file is skipped; sets then fall back to their card data.
func (l *Loader) Load() (*Registry, error) {
	cards, err := LoadCards(l.CardsPath)
	if err != nil {
		return nil, err
	}

	sources := make([][]SetMeta, 0, len(l.SetsPaths))
	for _, path := range l.SetsPaths {
		metas, err := LoadSetMeta(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sources = append(sources, metas)
	}

	return NewRegistry(cards, MergeSetMeta(sources...), l.Rules), nil
}

// Paths returns every catalog file the loader reads.
func (l *Loader) Paths() []string {
	return append([]string{l.CardsPath}, l.SetsPaths...)
}

// LoadCards reads a JSON array of card rows and normalizes them.
// Rows without a set code are dropped.
func LoadCards(path string) ([]*Card, error) {
	rows, err := readRecords(path)
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}

	cards := make([]*Card, 0, len(rows))
	for _, row := range rows {
		if c, ok := NormalizeCard(row); ok {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

// LoadSetMeta reads a JSON array of set metadata rows.
func LoadSetMeta(path string) ([]SetMeta, error) {
	rows, err := readRecords(path)
	if err != nil {
		return nil, fmt.Errorf("load sets: %w", err)
	}

	metas := make([]SetMeta, 0, len(rows))
	for _, row := range rows {
		metas = append(metas, NormalizeSetMeta(row))
	}
	return metas, nil
}

func readRecords(path string) ([]RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var rows []RawRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}
