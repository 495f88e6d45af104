package chefbook

import (
	"database/sql"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested recipe does not exist.
var ErrNotFound = sql.ErrNoRows

// RecipeCache is an in-memory cache of saved recipes with TTL.
type RecipeCache struct {
	mu      sync.RWMutex
	recipes []Recipe
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewRecipeCache creates a RecipeCache backed by the given Store.
func NewRecipeCache(s *Store, ttl time.Duration) *RecipeCache {
	return &RecipeCache{store: s, ttl: ttl}
}

func (c *RecipeCache) valid() bool {
	return c.recipes != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *RecipeCache) Invalidate() {
	c.mu.Lock()
	c.recipes = nil
	c.mu.Unlock()
}

func (c *RecipeCache) load() error {
	if c.valid() {
		return nil
	}
	recipes, err := c.store.ListRecipes()
	if err != nil {
		return err
	}
	if recipes == nil {
		recipes = []Recipe{}
	}
	c.recipes = recipes
	c.fetched = time.Now()
	return nil
}

// ListRecipes returns every recipe, newest first. The slice is shared; do
// not modify it.
func (c *RecipeCache) ListRecipes() ([]Recipe, error) {
	c.mu.RLock()
	if c.valid() {
		recipes := c.recipes
		c.mu.RUnlock()
		return recipes, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.recipes, nil
}

// GetRecipe returns a single recipe by id from the cache.
func (c *RecipeCache) GetRecipe(id int64) (Recipe, error) {
	recipes, err := c.ListRecipes()
	if err != nil {
		return Recipe{}, err
	}
	for _, r := range recipes {
		if r.ID == id {
			return r, nil
		}
	}
	return Recipe{}, ErrNotFound
}
