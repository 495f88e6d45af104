package chefbook

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database and provides CRUD operations for recipes.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the gallery read while a save is writing; writers wait on
	// busy instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS recipes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    ingredients TEXT NOT NULL,
    instructions TEXT NOT NULL,
    difficulty_rating INTEGER NOT NULL DEFAULT 3,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes (created_at);
`)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE recipes ADD COLUMN wine_pairing TEXT NOT NULL DEFAULT '';`); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return nil
		}
		return err
	}
	return nil
}

// createdLayout is fixed width so created_at sorts lexically in time order.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recipeColumns = `id, title, ingredients, instructions, difficulty_rating, wine_pairing, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner) (Recipe, error) {
	var (
		r                         Recipe
		ingredients, instructions string
		created                   string
	)
	if err := row.Scan(&r.ID, &r.Title, &ingredients, &instructions, &r.Difficulty, &r.WinePairing, &created); err != nil {
		return Recipe{}, err
	}
	r.Ingredients = SplitLines(ingredients)
	r.Instructions = SplitLines(instructions)
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Recipe{}, fmt.Errorf("recipe %d: created_at %q: %w", r.ID, created, err)
	}
	r.CreatedAt = t
	return r, nil
}

// ListRecipes returns every recipe, newest first.
func (s *Store) ListRecipes() ([]Recipe, error) {
	rows, err := s.db.Query(`SELECT ` + recipeColumns + ` FROM recipes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// GetRecipe returns a single recipe by id.
func (s *Store) GetRecipe(id int64) (Recipe, error) {
	return scanRecipe(s.db.QueryRow(`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id))
}

// SaveRecipe inserts a recipe and returns its id. A zero CreatedAt is set
// to now.
func (s *Store) SaveRecipe(r Recipe) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`INSERT INTO recipes (title, ingredients, instructions, difficulty_rating, wine_pairing, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.Title, JoinLines(r.Ingredients), JoinLines(r.Instructions), r.Difficulty, r.WinePairing, r.CreatedAt.UTC().Format(createdLayout))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteRecipe removes a recipe by id. It returns ErrNotFound when there was
// nothing to delete.
func (s *Store) DeleteRecipe(id int64) error {
	res, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// JoinLines stores an ordered list as newline separated text.
func JoinLines(lines []string) string {
	return strings.Join(FlattenLines(lines), "\n")
}

// SplitLines parses newline separated text (e.g. "a\nb\n") into a slice.
func SplitLines(text string) []string {
	return FilterEmpty(strings.Split(text, "\n"))
}
