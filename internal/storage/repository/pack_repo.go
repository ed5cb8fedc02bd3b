package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ramonehamilton/stccg-pack-opener/internal/storage/models"
)

// PackOpenRepository handles database operations for opened packs.
type PackOpenRepository interface {
	// Create stores a pack and its card list.
	Create(ctx context.Context, pack *models.PackOpen) error

	// CountsBySet returns pack-open counters for every set with at least one open.
	CountsBySet(ctx context.Context) ([]*models.SetOpenCount, error)

	// CountForSet returns how many packs of a set were opened.
	CountForSet(ctx context.Context, setCode string) (int, error)

	// GetRecent returns the most recent packs, newest first, with their cards.
	GetRecent(ctx context.Context, limit int) ([]*models.PackOpen, error)
}

type packOpenRepository struct {
	db DBTX
}

// NewPackOpenRepository creates a new pack-open repository.
func NewPackOpenRepository(db DBTX) PackOpenRepository {
	return &packOpenRepository{db: db}
}

func (r *packOpenRepository) Create(ctx context.Context, pack *models.PackOpen) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pack_opens (id, set_code, card_count, opened_at) VALUES (?, ?, ?, ?)`,
		pack.ID, pack.SetCode, len(pack.CardIDs), pack.OpenedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pack open: %w", err)
	}

	for i, cardID := range pack.CardIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO pack_open_cards (pack_id, position, card_id) VALUES (?, ?, ?)`,
			pack.ID, i, cardID,
		)
		if err != nil {
			return fmt.Errorf("failed to store pack card %d: %w", i, err)
		}
	}

	return nil
}

func (r *packOpenRepository) CountsBySet(ctx context.Context) ([]*models.SetOpenCount, error) {
	query := `
		SELECT set_code, COUNT(*), MAX(opened_at)
		FROM pack_opens
		GROUP BY set_code
		ORDER BY set_code
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count pack opens: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []*models.SetOpenCount
	for rows.Next() {
		c := &models.SetOpenCount{}
		// MAX() drops the column type, so the timestamp comes back as text.
		var last string
		if err := rows.Scan(&c.SetCode, &c.Opens, &last); err != nil {
			return nil, fmt.Errorf("failed to scan pack open count: %w", err)
		}
		c.LastOpenedAt = parseTime(last)
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pack open counts: %w", err)
	}

	return counts, nil
}

func (r *packOpenRepository) CountForSet(ctx context.Context, setCode string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pack_opens WHERE set_code = ?`, setCode).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pack opens for %s: %w", setCode, err)
	}
	return n, nil
}

func (r *packOpenRepository) GetRecent(ctx context.Context, limit int) ([]*models.PackOpen, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, set_code, opened_at FROM pack_opens ORDER BY opened_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent packs: %w", err)
	}

	var packs []*models.PackOpen
	for rows.Next() {
		p := &models.PackOpen{}
		if err := rows.Scan(&p.ID, &p.SetCode, &p.OpenedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan pack open: %w", err)
		}
		packs = append(packs, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("error iterating recent packs: %w", err)
	}
	_ = rows.Close()

	for _, p := range packs {
		if p.CardIDs, err = r.cardIDs(ctx, p.ID); err != nil {
			return nil, err
		}
	}

	return packs, nil
}

func (r *packOpenRepository) cardIDs(ctx context.Context, packID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT card_id FROM pack_open_cards WHERE pack_id = ? ORDER BY position`,
		packID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get pack cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan pack card: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pack cards: %w", err)
	}
	return ids, nil
}

// timeLayouts are the formats the SQLite driver writes time.Time values in.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
