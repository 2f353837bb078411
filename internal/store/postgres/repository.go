package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/snote/internal/dbx"
	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/store"
)

// indexLockKey serializes index assignment across concurrent creates.
const indexLockKey int64 = 0x736e6f7465 // "snote"

const entryColumns = `id, entry_index, title, content, preview, date, last_updated, icon`

// Repository implements store.Repository over *sql.DB.
type Repository struct {
	db *sql.DB
}

var _ store.Repository = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var (
		e           domain.Entry
		lastUpdated sql.NullTime
		icon        sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Index, &e.Title, &e.Content, &e.Preview, &e.Date, &lastUpdated, &icon); err != nil {
		return nil, err
	}
	if lastUpdated.Valid {
		ts := lastUpdated.Time
		e.LastUpdated = &ts
	}
	if icon.Valid {
		e.Icon = domain.Icon(icon.String)
	}
	return &e, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullIcon(i domain.Icon) sql.NullString {
	if i == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(i), Valid: true}
}

// List returns all entries, newest first.
func (r *Repository) List(ctx context.Context) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries ORDER BY date DESC, entry_index DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("select entries", err)
	}
	defer rows.Close()

	result := make([]*domain.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, storeErr("scan entry", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate entries", err)
	}
	return result, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, storeErr("select entry", err)
	}
	return e, nil
}

// Create inserts e. The advisory lock makes max(entry_index)+1 safe under
// concurrent inserts; it is released when the transaction ends.
func (r *Repository) Create(ctx context.Context, e *domain.Entry) (*domain.Entry, error) {
	created := e.Clone()

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, indexLockKey); err != nil {
			return fmt.Errorf("index lock: %w", err)
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(entry_index), 0) + 1 FROM entries`,
		).Scan(&created.Index); err != nil {
			return fmt.Errorf("next index: %w", err)
		}

		query := `
			INSERT INTO entries (id, entry_index, title, content, preview, date, icon)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.ExecContext(ctx, query,
			created.ID, created.Index, created.Title, created.Content, created.Preview, created.Date, nullIcon(created.Icon),
		); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("create entry", err)
	}
	return created, nil
}

// Update applies p in a single statement. GREATEST keeps last_updated at or
// after the creation date.
func (r *Repository) Update(ctx context.Context, id string, p store.Patch) (*domain.Entry, error) {
	query := `
		UPDATE entries SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			preview = COALESCE($4, preview),
			icon = CASE WHEN $5 THEN $6 ELSE icon END,
			last_updated = GREATEST($7, date)
		WHERE id = $1
		RETURNING ` + entryColumns

	var icon sql.NullString
	if p.Icon != nil {
		icon = nullIcon(*p.Icon)
	}

	e, err := scanEntry(r.db.QueryRowContext(ctx, query,
		id, nullString(p.Title), nullString(p.Content), nullString(p.Preview),
		p.Icon != nil, icon, p.LastUpdated,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, storeErr("update entry", err)
	}
	return e, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, storeErr("count entries", err)
	}
	return n, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}
