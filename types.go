package chefbook

import (
	"strconv"
	"time"

	"github.com/eringen/chefbook/capture"
	"github.com/eringen/chefbook/cooking"
	"github.com/eringen/chefbook/filter"
)

// Recipe is the core content type stored in SQLite and rendered by templates.
type Recipe struct {
	ID           int64
	Title        string
	Ingredients  []string
	Instructions []string
	Difficulty   int
	WinePairing  string
	CreatedAt    time.Time
}

// Link is the recipe's page path.
func (r Recipe) Link() string {
	return "/recipe/" + strconv.FormatInt(r.ID, 10) + "/"
}

// Preview returns at most n ingredients for gallery cards.
func (r Recipe) Preview(n int) []string {
	if len(r.Ingredients) <= n {
		return r.Ingredients
	}
	return r.Ingredients[:n]
}

// Draft converts the recipe into the shape the capture client posts.
func (r Recipe) Draft() capture.Draft {
	return capture.Draft{
		Title:        r.Title,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Difficulty:   r.Difficulty,
		WinePairing:  r.WinePairing,
	}
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Page is the data every template receives.
type Page struct {
	Meta      PageMeta
	SiteName  string
	CSRFToken string
	Flashes   []string
}

// GalleryCard is one recipe in the gallery. Hidden cards stay in the
// document so clearing the filters can reveal them again.
type GalleryCard struct {
	Recipe  Recipe
	Visible bool
	Delay   time.Duration
}

// GalleryPage lists saved recipes under the filter controls.
type GalleryPage struct {
	Page
	Cards     []GalleryCard
	Filters   filter.Preferences
	Sorts     []filter.Sort
	NoResults bool
}

// ShareLink is a prepared share target for a recipe page.
type ShareLink struct {
	Platform capture.Platform
	URL      string
}

// RecipePage is a single recipe with its actions.
type RecipePage struct {
	Page
	Recipe    Recipe
	JSONLD    string
	PlainText string
	Share     []ShareLink
	Delete    DeleteConfirmation
}

// CookingPage is cooking mode for one recipe.
type CookingPage struct {
	Page
	Recipe  Recipe
	State   cooking.Snapshot
	Presets []int
}

// DeletePage asks for confirmation before a recipe is removed.
type DeletePage struct {
	Page
	Confirm DeleteConfirmation
}
