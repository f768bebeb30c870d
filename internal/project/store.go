// Package project holds the workspace registry behind the dashboard: a
// SQLite-backed recent-items list plus scaffolding for new workspaces.
package project

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/simoncoessens/deskpin/internal/logging"
)

var log = logging.ForComponent(logging.CompStore)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// ErrNotFound is returned when no workspace matches the query.
var ErrNotFound = errors.New("workspace not found")

// Store persists workspace entries in SQLite.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// NewStore opens (and if needed creates) the workspace database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open workspace database: %w", err)
	}

	if _, err := db.Exec(migrationV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migration: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns all workspaces, most recently opened first.
func (s *Store) List() ([]*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, name, path, template, created_at, last_opened_at
		FROM workspaces ORDER BY last_opened_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var out []*Workspace
	for rows.Next() {
		var ws Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Path, &ws.Template, &ws.CreatedAt, &ws.LastOpenedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		out = append(out, &ws)
	}
	return out, rows.Err()
}

// Get retrieves a workspace by ID.
func (s *Store) Get(id string) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked("id", id)
}

// FindByPath retrieves a workspace by its directory path.
func (s *Store) FindByPath(path string) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked("path", path)
}

func (s *Store) getLocked(column, value string) (*Workspace, error) {
	var ws Workspace
	err := s.db.QueryRow(fmt.Sprintf(`
		SELECT id, name, path, template, created_at, last_opened_at
		FROM workspaces WHERE %s = ?`, column), value).
		Scan(&ws.ID, &ws.Name, &ws.Path, &ws.Template, &ws.CreatedAt, &ws.LastOpenedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	return &ws, nil
}

// Save inserts or updates a workspace. A missing ID is generated; CreatedAt
// is set on first save and LastOpenedAt always advances to now.
func (s *Store) Save(ws *Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws.ID == "" {
		ws.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = now
	}
	ws.LastOpenedAt = now

	_, err := s.db.Exec(`
		INSERT INTO workspaces (id, name, path, template, created_at, last_opened_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			template = excluded.template,
			last_opened_at = excluded.last_opened_at`,
		ws.ID, ws.Name, ws.Path, ws.Template, ws.CreatedAt, ws.LastOpenedAt)
	if err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}

// Touch advances a workspace's last-opened time to now.
func (s *Store) Touch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE workspaces SET last_opened_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("touch workspace: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a workspace entry. The directory on disk is left alone.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Prune drops entries whose directory no longer exists and returns how many
// were removed. Run from the dashboard on startup.
func (s *Store) Prune() (int, error) {
	list, err := s.List()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, ws := range list {
		if _, statErr := os.Stat(ws.Path); !os.IsNotExist(statErr) {
			continue
		}
		if err := s.Delete(ws.ID); err != nil {
			log.Warn("prune failed", "id", ws.ID, "err", err)
			continue
		}
		pruned++
	}
	if pruned > 0 {
		log.Info("pruned stale workspaces", "count", pruned)
	}
	return pruned, nil
}
