//go:build !mem

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mithrel/stackshelf/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

// openSQLite connects with the modernc.org/sqlite driver and ensures the
// schema exists.
func openSQLite(ctx context.Context, dsn string) (Store, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if path == "" {
		return nil, errors.New("db: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// set WAL mode
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA busy_timeout=5000;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqliteStore{db: dbh}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS essays (
  id TEXT PRIMARY KEY,
  author TEXT NOT NULL,
  seq INTEGER NOT NULL,
  title TEXT NOT NULL,
  subtitle TEXT NOT NULL,
  like_count INTEGER NOT NULL,
  date TEXT NOT NULL,
  published_at INTEGER NOT NULL,
  file_link TEXT NOT NULL,
  html_link TEXT NOT NULL,
  source_url TEXT NOT NULL,
  scraped_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_essays_author_seq ON essays(author, seq);
CREATE INDEX IF NOT EXISTS idx_essays_author_published ON essays(author, published_at);
CREATE INDEX IF NOT EXISTS idx_essays_author_likes ON essays(author, like_count);
CREATE INDEX IF NOT EXISTS idx_essays_source_url ON essays(source_url);
`)
	return err
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) Upsert(ctx context.Context, author string, e api.Essay) error {
	if strings.TrimSpace(author) == "" {
		return fmt.Errorf("upsert %q: author is required", e.Title)
	}
	_, err := conn(ctx, s.db).ExecContext(ctx, `
INSERT INTO essays(id, author, seq, title, subtitle, like_count, date, published_at, file_link, html_link, source_url, scraped_at)
VALUES(?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM essays WHERE author = ?), ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title = excluded.title,
  subtitle = excluded.subtitle,
  like_count = excluded.like_count,
  date = excluded.date,
  published_at = excluded.published_at,
  file_link = excluded.file_link,
  html_link = excluded.html_link,
  source_url = excluded.source_url`,
		e.ID(), author, author, e.Title, e.Subtitle, e.LikeCount, e.Date, unixDate(e),
		e.FileLink, e.HTMLLink, e.SourceURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert %q: %w", e.Title, err)
	}
	return nil
}

func (s *sqliteStore) UpsertMany(ctx context.Context, author string, es api.Essays) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txCtx := WithTx(ctx, tx)
	for _, e := range es {
		if err := s.Upsert(txCtx, author, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) List(ctx context.Context, q ListQuery) (api.Essays, error) {
	sqlq := `SELECT title, subtitle, like_count, date, file_link, html_link, source_url FROM essays`
	var args []any
	if q.Author != "" {
		sqlq += ` WHERE author = ?`
		args = append(args, q.Author)
	}
	sqlq += ` ` + orderByClause(q)
	if q.Limit > 0 {
		sqlq += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := api.Essays{}
	for rows.Next() {
		var e api.Essay
		if err := rows.Scan(&e.Title, &e.Subtitle, &e.LikeCount, &e.Date, &e.FileLink, &e.HTMLLink, &e.SourceURL); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// orderByClause sorts on the key then on author and seq so ties keep
// insertion order whichever way the key runs.
func orderByClause(q ListQuery) string {
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	switch q.Order {
	case OrderDate:
		return "ORDER BY published_at " + dir + ", author ASC, seq ASC"
	case OrderLikes:
		return "ORDER BY like_count " + dir + ", author ASC, seq ASC"
	default:
		return "ORDER BY author ASC, seq " + dir
	}
}

func (s *sqliteStore) Get(ctx context.Context, id string) (Record, error) {
	var r Record
	row := conn(ctx, s.db).QueryRowContext(ctx, `SELECT author, title, subtitle, like_count, date, file_link, html_link, source_url, scraped_at FROM essays WHERE id = ?`, id)
	e := &r.Essay
	if err := row.Scan(&r.Author, &e.Title, &e.Subtitle, &e.LikeCount, &e.Date, &e.FileLink, &e.HTMLLink, &e.SourceURL, &r.ScrapedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return r, nil
}

func (s *sqliteStore) Authors(ctx context.Context) ([]AuthorStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT author, COUNT(*) FROM essays GROUP BY author ORDER BY author ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AuthorStat
	for rows.Next() {
		var a AuthorStat
		if err := rows.Scan(&a.Name, &a.Essays); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, s.db).ExecContext(ctx, `DELETE FROM essays WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) Seen(ctx context.Context, sourceURL string) (bool, error) {
	if sourceURL == "" {
		return false, nil
	}
	var one int
	err := conn(ctx, s.db).QueryRowContext(ctx, `SELECT 1 FROM essays WHERE source_url = ? LIMIT 1`, sourceURL).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
