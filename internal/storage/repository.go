package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glabrego/gaufre-cli/internal/gopher"
)

// Bookmark is a saved address. Bookmarks never hold fetched content.
type Bookmark struct {
	ID        int64
	Title     string
	Address   gopher.Address
	CreatedAt time.Time
}

// UIPreferences are display toggles that survive restarts.
type UIPreferences struct {
	ShowNumbers bool
	WrapWidth   int
}

var ErrBookmarkNotFound = errors.New("bookmark not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  host TEXT NOT NULL,
  port INTEGER NOT NULL,
  selector TEXT NOT NULL,
  item_type TEXT NOT NULL,
  created_at TEXT NOT NULL,
  UNIQUE(host, port, selector, item_type)
);
CREATE TABLE IF NOT EXISTS ui_preferences (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveBookmark inserts the address or refreshes the title of an existing one.
func (r *Repository) SaveBookmark(ctx context.Context, title string, addr gopher.Address) (Bookmark, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO bookmarks (title, host, port, selector, item_type, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(host, port, selector, item_type) DO UPDATE SET
  title=excluded.title
`, title, addr.Host, addr.Port, addr.Selector, string(addr.Type.Char()), now.Format(time.RFC3339Nano))
	if err != nil {
		return Bookmark{}, fmt.Errorf("save bookmark %s: %w", addr.URL(), err)
	}

	row := r.db.QueryRowContext(ctx, `
SELECT id, title, host, port, selector, item_type, created_at
FROM bookmarks
WHERE host = ? AND port = ? AND selector = ? AND item_type = ?
`, addr.Host, addr.Port, addr.Selector, string(addr.Type.Char()))
	return scanBookmark(row)
}

func (r *Repository) ListBookmarks(ctx context.Context) ([]Bookmark, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, host, port, selector, item_type, created_at
FROM bookmarks
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return bookmarks, nil
}

func (r *Repository) DeleteBookmark(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bookmark %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bookmark %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete bookmark %d: %w", id, ErrBookmarkNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row rowScanner) (Bookmark, error) {
	var b Bookmark
	var itemType, createdAt string
	if err := row.Scan(&b.ID, &b.Title, &b.Address.Host, &b.Address.Port, &b.Address.Selector, &itemType, &createdAt); err != nil {
		return Bookmark{}, fmt.Errorf("scan bookmark: %w", err)
	}
	if itemType != "" {
		b.Address.Type = gopher.ParseItemType(itemType[0])
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Bookmark{}, fmt.Errorf("parse bookmark created_at %q: %w", createdAt, err)
	}
	b.CreatedAt = t
	return b, nil
}

// LoadUIPreferences returns defaults for keys that were never saved.
func (r *Repository) LoadUIPreferences(ctx context.Context, defaults UIPreferences) (UIPreferences, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM ui_preferences`)
	if err != nil {
		return defaults, fmt.Errorf("query ui preferences: %w", err)
	}
	defer rows.Close()

	prefs := defaults
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return defaults, fmt.Errorf("scan ui preference: %w", err)
		}
		switch key {
		case "show_numbers":
			if v, err := strconv.ParseBool(value); err == nil {
				prefs.ShowNumbers = v
			}
		case "wrap_width":
			if v, err := strconv.Atoi(value); err == nil && v >= 0 {
				prefs.WrapWidth = v
			}
		}
	}
	if err := rows.Err(); err != nil {
		return defaults, fmt.Errorf("rows iteration: %w", err)
	}
	return prefs, nil
}

func (r *Repository) SaveUIPreferences(ctx context.Context, prefs UIPreferences) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO ui_preferences (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value
`)
	if err != nil {
		return fmt.Errorf("prepare preference statement: %w", err)
	}
	defer stmt.Close()

	values := map[string]string{
		"show_numbers": strconv.FormatBool(prefs.ShowNumbers),
		"wrap_width":   strconv.Itoa(prefs.WrapWidth),
	}
	for key, value := range values {
		if _, err := stmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("save preference %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
