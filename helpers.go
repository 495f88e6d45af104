package chefbook

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// DeleteConfirmation is a staged, not yet submitted, recipe deletion.
type DeleteConfirmation struct {
	Title  string
	Action string
}

// StageDelete prepares the confirmation for deleting a recipe. Nothing is
// removed until a form posts to Action.
func StageDelete(id int64, title string) DeleteConfirmation {
	return DeleteConfirmation{
		Title:  title,
		Action: "/delete_recipe/" + strconv.FormatInt(id, 10),
	}
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty trims every string and drops the empty ones.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// FlattenLines is FilterEmpty for list items that are stored one per line:
// line breaks inside an item become spaces.
func FlattenLines(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, lineBreaks.Replace(v))
	}
	return FilterEmpty(out)
}

// ClampDifficulty keeps a rating within 1..5. Zero means unrated and
// becomes 3.
func ClampDifficulty(d int) int {
	switch {
	case d == 0:
		return 3
	case d < 1:
		return 1
	case d > 5:
		return 5
	default:
		return d
	}
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// RecipeJsonLD returns a JSON-LD string for a schema.org Recipe.
func RecipeJsonLD(r Recipe, cfg SiteConfig) string {
	recipeURL := BuildURL(cfg.URL, "recipe", strconv.FormatInt(r.ID, 10))
	steps := make([]map[string]string, 0, len(r.Instructions))
	for _, s := range r.Instructions {
		steps = append(steps, map[string]string{
			"@type": "HowToStep",
			"text":  s,
		})
	}
	data := map[string]interface{}{
		"@context":           "https://schema.org",
		"@type":              "Recipe",
		"name":               r.Title,
		"url":                recipeURL,
		"datePublished":      r.CreatedAt.UTC().Format("2006-01-02"),
		"recipeIngredient":   r.Ingredients,
		"recipeInstructions": steps,
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
