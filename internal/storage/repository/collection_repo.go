package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/stccg-pack-opener/internal/storage/models"
)

// CollectionRepository handles database operations for owned cards.
type CollectionRepository interface {
	// AddCard adds one copy of a card and returns the count after the add.
	AddCard(ctx context.Context, card *models.CollectionCard, at time.Time) (int, error)

	// GetCount returns how many copies of a card are owned.
	GetCount(ctx context.Context, cardID string) (int, error)

	// GetOwned returns the owned count for each of cardIDs that is owned.
	GetOwned(ctx context.Context, cardIDs []string) (map[string]int, error)

	// GetAll returns the whole collection ordered by set and card ID.
	GetAll(ctx context.Context) ([]*models.CollectionCard, error)

	// GetBySet returns the owned cards of one set.
	GetBySet(ctx context.Context, setCode string) ([]*models.CollectionCard, error)

	// Progress returns unique and total pulls per set.
	Progress(ctx context.Context) ([]*models.SetProgress, error)
}

type collectionRepository struct {
	db DBTX
}

// NewCollectionRepository creates a new collection repository.
func NewCollectionRepository(db DBTX) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) AddCard(ctx context.Context, card *models.CollectionCard, at time.Time) (int, error) {
	query := `
		INSERT INTO collection (card_id, set_code, name, rarity, count, first_pulled_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			count = count + 1,
			updated_at = excluded.updated_at
		RETURNING count
	`

	var count int
	err := r.db.QueryRowContext(ctx, query,
		card.CardID,
		card.SetCode,
		card.Name,
		card.Rarity,
		at,
		at,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to add card %s: %w", card.CardID, err)
	}

	return count, nil
}

func (r *collectionRepository) GetCount(ctx context.Context, cardID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count FROM collection WHERE card_id = ?`, cardID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get card count: %w", err)
	}
	return count, nil
}

func (r *collectionRepository) GetOwned(ctx context.Context, cardIDs []string) (map[string]int, error) {
	owned := make(map[string]int)
	if len(cardIDs) == 0 {
		return owned, nil
	}

	// SQLite limits bound parameters, so large sets are queried in chunks.
	const chunk = 500
	for start := 0; start < len(cardIDs); start += chunk {
		ids := cardIDs[start:min(start+chunk, len(cardIDs))]

		args := make([]any, len(ids))
		for i, id := range ids {
			args[i] = id
		}

		query := `SELECT card_id, count FROM collection WHERE count > 0 AND card_id IN (` + placeholders(len(ids)) + `)`
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to get owned cards: %w", err)
		}

		for rows.Next() {
			var id string
			var count int
			if err := rows.Scan(&id, &count); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to scan owned card: %w", err)
			}
			owned[id] = count
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("error iterating owned cards: %w", err)
		}
		_ = rows.Close()
	}

	return owned, nil
}

func (r *collectionRepository) GetAll(ctx context.Context) ([]*models.CollectionCard, error) {
	return r.query(ctx, `
		SELECT card_id, set_code, name, rarity, count, first_pulled_at, updated_at
		FROM collection
		ORDER BY set_code, card_id
	`)
}

func (r *collectionRepository) GetBySet(ctx context.Context, setCode string) ([]*models.CollectionCard, error) {
	return r.query(ctx, `
		SELECT card_id, set_code, name, rarity, count, first_pulled_at, updated_at
		FROM collection
		WHERE set_code = ?
		ORDER BY card_id
	`, setCode)
}

func (r *collectionRepository) query(ctx context.Context, query string, args ...any) ([]*models.CollectionCard, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.CollectionCard
	for rows.Next() {
		card := &models.CollectionCard{}
		if err := rows.Scan(
			&card.CardID,
			&card.SetCode,
			&card.Name,
			&card.Rarity,
			&card.Count,
			&card.FirstPulledAt,
			&card.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collection card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection: %w", err)
	}

	return cards, nil
}

func (r *collectionRepository) Progress(ctx context.Context) ([]*models.SetProgress, error) {
	query := `
		SELECT set_code, COUNT(*), COALESCE(SUM(count), 0)
		FROM collection
		WHERE count > 0
		GROUP BY set_code
		ORDER BY set_code
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection progress: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var progress []*models.SetProgress
	for rows.Next() {
		p := &models.SetProgress{}
		if err := rows.Scan(&p.SetCode, &p.UniqueOwned, &p.TotalPulled); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		progress = append(progress, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress: %w", err)
	}

	return progress, nil
}
