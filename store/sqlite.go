package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/use-agent/clipper/models"
)

// timeLayout is fixed-width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Ensure SQLite implements Store at compile time.
var _ Store = (*SQLite)(nil)

// SQLite stores records in a SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema exists. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	s := &SQLite{db: conn, path: path}
	if err := s.createSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) Kind() string { return "sqlite" }

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLite) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS contents (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			publish_date TEXT NOT NULL DEFAULT '',
			site_name TEXT NOT NULL DEFAULT '',
			header_image TEXT NOT NULL DEFAULT '',
			translated_title TEXT NOT NULL DEFAULT '',
			translated_content TEXT NOT NULL DEFAULT '',
			translated_description TEXT NOT NULL DEFAULT '',
			notion_page_id TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_contents_url ON contents(url, created_at);
	`)
	return err
}

const selectColumns = `id, url, title, content, description, author, publish_date, site_name, header_image,
	translated_title, translated_content, translated_description, notion_page_id, content_hash, created_at`

func (s *SQLite) Create(ctx context.Context, c *models.Content) error {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()
	c.ContentHash = hashContent(c.Content)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contents (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.URL, c.Title, c.Content, c.Description, c.Author, c.PublishDate, c.SiteName, c.HeaderImage,
		c.TranslatedTitle, c.TranslatedContent, c.TranslatedDescription, c.NotionPageID, c.ContentHash,
		c.CreatedAt.Format(timeLayout))
	return err
}

func (s *SQLite) FindByID(ctx context.Context, id string) (*models.Content, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM contents WHERE id = ?`, id)
	return scanContent(row)
}

func (s *SQLite) FindByURL(ctx context.Context, url string) (*models.Content, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+` FROM contents
		WHERE url = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, url)
	return scanContent(row)
}

func (s *SQLite) Update(ctx context.Context, c *models.Content) error {
	c.ContentHash = hashContent(c.Content)

	res, err := s.db.ExecContext(ctx, `
		UPDATE contents SET
			url = ?, title = ?, content = ?, description = ?, author = ?, publish_date = ?,
			site_name = ?, header_image = ?, translated_title = ?, translated_content = ?,
			translated_description = ?, notion_page_id = ?, content_hash = ?
		WHERE id = ?
	`, c.URL, c.Title, c.Content, c.Description, c.Author, c.PublishDate,
		c.SiteName, c.HeaderImage, c.TranslatedTitle, c.TranslatedContent,
		c.TranslatedDescription, c.NotionPageID, c.ContentHash, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("content")
	}
	return nil
}

func scanContent(row *sql.Row) (*models.Content, error) {
	var (
		c         models.Content
		createdAt string
	)
	err := row.Scan(&c.ID, &c.URL, &c.Title, &c.Content, &c.Description, &c.Author, &c.PublishDate,
		&c.SiteName, &c.HeaderImage, &c.TranslatedTitle, &c.TranslatedContent, &c.TranslatedDescription,
		&c.NotionPageID, &c.ContentHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("content")
	}
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &c, nil
}
