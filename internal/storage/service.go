package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/stccg-pack-opener/internal/catalog"
	"github.com/ramonehamilton/stccg-pack-opener/internal/packs"
	"github.com/ramonehamilton/stccg-pack-opener/internal/storage/models"
	"github.com/ramonehamilton/stccg-pack-opener/internal/storage/repository"
)

// completionCategories are the rarities tracked for set completion.
var completionCategories = []packs.Category{
	packs.CategoryCommon,
	packs.CategoryUncommon,
	packs.CategoryRare,
	packs.CategoryRarePlus,
	packs.CategoryUltra,
}

// PackRecord is the outcome of recording an opened pack.
type PackRecord struct {
	PackID string

	// NewCards are the IDs pulled for the first time, in pack order.
	NewCards []string

	// Completions are the set rarities completed by this pack. Each set/rarity
	// pair is reported once over the life of the collection.
	Completions []*models.RarityCompletion
}

// Service provides collection bookkeeping for opened packs.
type Service struct {
	db          *DB
	collection  repository.CollectionRepository
	packOpens   repository.PackOpenRepository
	completions repository.CompletionRepository

	now   func() time.Time
	newID func() string
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	s := &Service{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
	if db != nil {
		s.collection = repository.NewCollectionRepository(db.Conn())
		s.packOpens = repository.NewPackOpenRepository(db.Conn())
		s.completions = repository.NewCompletionRepository(db.Conn())
	}
	return s
}

// RecordPack adds the pack's cards to the collection, bumps the set's pack
// counter and detects newly completed rarities of set, all in one transaction.
func (s *Service) RecordPack(ctx context.Context, set *catalog.Set, pack []*catalog.Card) (*PackRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	if set == nil {
		return nil, fmt.Errorf("record pack: %w", catalog.ErrSetNotFound)
	}

	at := s.now().UTC()
	record := &PackRecord{PackID: s.newID()}

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		collection := repository.NewCollectionRepository(tx)
		packOpens := repository.NewPackOpenRepository(tx)
		completions := repository.NewCompletionRepository(tx)

		open := &models.PackOpen{ID: record.PackID, SetCode: set.Code, OpenedAt: at}
		for _, card := range pack {
			open.CardIDs = append(open.CardIDs, card.ID)
		}
		if err := packOpens.Create(ctx, open); err != nil {
			return err
		}

		for _, card := range pack {
			if card.ID == "" {
				continue
			}
			count, err := collection.AddCard(ctx, &models.CollectionCard{
				CardID:  card.ID,
				SetCode: card.SetCode,
				Name:    card.Name,
				Rarity:  card.Rarity,
			}, at)
			if err != nil {
				return err
			}
			if count == 1 {
				record.NewCards = append(record.NewCards, card.ID)
			}
		}

		found, err := checkCompletions(ctx, collection, set, at)
		if err != nil {
			return err
		}
		for _, c := range found {
			added, err := completions.Add(ctx, c)
			if err != nil {
				return err
			}
			if added {
				record.Completions = append(record.Completions, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record pack for %s: %w", set.Code, err)
	}

	return record, nil
}

// checkCompletions returns every tracked rarity of set whose cards are all owned.
// Rarities the set has no cards of are skipped.
func checkCompletions(ctx context.Context, collection repository.CollectionRepository, set *catalog.Set, at time.Time) ([]*models.RarityCompletion, error) {
	byCategory := make(map[packs.Category][]string)
	var ids []string
	for _, card := range set.Cards {
		if card.ID == "" {
			continue
		}
		cat := packs.Classify(card.Rarity)
		byCategory[cat] = append(byCategory[cat], card.ID)
		ids = append(ids, card.ID)
	}

	owned, err := collection.GetOwned(ctx, ids)
	if err != nil {
		return nil, err
	}

	var out []*models.RarityCompletion
	for _, cat := range completionCategories {
		cardIDs := byCategory[cat]
		if len(cardIDs) == 0 {
			continue
		}

		complete := true
		for _, id := range cardIDs {
			if owned[id] == 0 {
				complete = false
				break
			}
		}
		if complete {
			out = append(out, &models.RarityCompletion{
				SetCode:     set.Code,
				SetName:     set.Name,
				Category:    string(cat),
				CardCount:   len(cardIDs),
				CompletedAt: at,
			})
		}
	}
	return out, nil
}

// Collection returns every owned card.
func (s *Service) Collection(ctx context.Context) ([]*models.CollectionCard, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.collection.GetAll(ctx)
}

// SetCollection returns the owned cards of one set.
func (s *Service) SetCollection(ctx context.Context, setCode string) ([]*models.CollectionCard, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.collection.GetBySet(ctx, setCode)
}

// Progress returns unique and total pulls per set.
func (s *Service) Progress(ctx context.Context) ([]*models.SetProgress, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.collection.Progress(ctx)
}

// PackOpenCounts returns the pack-open counter of every opened set.
func (s *Service) PackOpenCounts(ctx context.Context) ([]*models.SetOpenCount, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.packOpens.CountsBySet(ctx)
}

// RecentPacks returns the last limit opened packs, newest first.
func (s *Service) RecentPacks(ctx context.Context, limit int) ([]*models.PackOpen, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.packOpens.GetRecent(ctx, limit)
}

// Completions returns every completed set rarity.
func (s *Service) Completions(ctx context.Context) ([]*models.RarityCompletion, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.completions.GetAll(ctx)
}
