package repository

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/stccg-pack-opener/internal/storage/models"
)

// CompletionRepository remembers which set rarities have been completed.
type CompletionRepository interface {
	// Add stores a completion. It returns false when the set/rarity pair was
	// already recorded.
	Add(ctx context.Context, c *models.RarityCompletion) (bool, error)

	// GetAll returns every recorded completion in completion order.
	GetAll(ctx context.Context) ([]*models.RarityCompletion, error)
}

type completionRepository struct {
	db DBTX
}

// NewCompletionRepository creates a new completion repository.
func NewCompletionRepository(db DBTX) CompletionRepository {
	return &completionRepository{db: db}
}

func (r *completionRepository) Add(ctx context.Context, c *models.RarityCompletion) (bool, error) {
	query := `
		INSERT INTO completed_rarities (set_code, set_name, category, card_count, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(set_code, category) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, c.SetCode, c.SetName, c.Category, c.CardCount, c.CompletedAt)
	if err != nil {
		return false, fmt.Errorf("failed to record completion: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *completionRepository) GetAll(ctx context.Context) ([]*models.RarityCompletion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT set_code, set_name, category, card_count, completed_at
		FROM completed_rarities
		ORDER BY completed_at, set_code, category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.RarityCompletion
	for rows.Next() {
		c := &models.RarityCompletion{}
		if err := rows.Scan(&c.SetCode, &c.SetName, &c.Category, &c.CardCount, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completions: %w", err)
	}

	return out, nil
}
