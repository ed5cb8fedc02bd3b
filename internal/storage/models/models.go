package models

import "time"

// CollectionCard is an owned card and how many copies have been pulled.
type CollectionCard struct {
	CardID        string
	SetCode       string
	Name          string
	Rarity        string
	Count         int
	FirstPulledAt time.Time
	UpdatedAt     time.Time
}

// PackOpen is one opened pack.
type PackOpen struct {
	ID       string // UUID
	SetCode  string
	CardIDs  []string // Presentation order
	OpenedAt time.Time
}

// SetOpenCount is the number of packs opened for a set.
type SetOpenCount struct {
	SetCode      string
	Opens        int
	LastOpenedAt time.Time
}

// SetProgress summarizes collection progress for a set.
type SetProgress struct {
	SetCode     string
	UniqueOwned int
	TotalPulled int
}

// RarityCompletion records that every card of one rarity in a set is owned.
type RarityCompletion struct {
	SetCode     string
	SetName     string
	Category    string // packs.Category value: "common", "rare-plus", ...
	CardCount   int
	CompletedAt time.Time
}
