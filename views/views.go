// Package views holds the default chefbook pages. Each page is an embedded
// html/template exposed as a templ.Component so it plugs into
// chefbook.ViewFuncs.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/eringen/chefbook"
	"github.com/eringen/chefbook/capture"
	"github.com/eringen/chefbook/filter"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"humanize": humanize.Time,
	"inc":      func(i int) int { return i + 1 },
	"ms":       func(d time.Duration) int64 { return d.Milliseconds() },
	"pct":      func(f float64) string { return fmt.Sprintf("%.0f", f) },
	"levels":   func() []int { return []int{1, 2, 3, 4, 5} },
	"itoa":     func(i int) string { return fmt.Sprint(i) },
	"jsonld":   func(s string) template.JS { return template.JS(s) },
	"date":     func(t time.Time) string { return t.Format("2 Jan 2006") },
	"stamp":    func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"lower":    strings.ToLower,
	"minutes":  func(s int) int { return s / 60 },
	"sortLabel": func(s filter.Sort) string {
		return sortLabels[s]
	},
	"platformLabel": func(p capture.Platform) string {
		return platformLabels[p]
	},
	"flag": func(done []bool, i int) bool {
		return i < len(done) && done[i]
	},
}

var sortLabels = map[filter.Sort]string{
	filter.SortNewest:         "Newest first",
	filter.SortOldest:         "Oldest first",
	filter.SortDifficultyAsc:  "Easiest first",
	filter.SortDifficultyDesc: "Hardest first",
	filter.SortTitle:          "Title (A-Z)",
}

var platformLabels = map[capture.Platform]string{
	capture.Facebook: "Facebook",
	capture.Twitter:  "Twitter",
	capture.WhatsApp: "WhatsApp",
}

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"gallery", "recipe", "cooking", "delete", "notfound", "error"} {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(files,
			"templates/layout.html", "templates/"+name+".html"))
	}
}

func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages[name].ExecuteTemplate(w, "layout", data)
	})
}

// Gallery renders the recipe list with its filter controls.
func Gallery(p chefbook.GalleryPage) templ.Component { return page("gallery", p) }

// Recipe renders a single recipe in the markup the capture client reads.
func Recipe(p chefbook.RecipePage) templ.Component { return page("recipe", p) }

// Cooking renders cooking mode.
func Cooking(p chefbook.CookingPage) templ.Component { return page("cooking", p) }

// ConfirmDelete renders the delete confirmation.
func ConfirmDelete(p chefbook.DeletePage) templ.Component { return page("delete", p) }

func NotFound() templ.Component {
	return page("notfound", chefbook.Page{Meta: chefbook.PageMeta{Title: "Not found"}})
}

func ServerError() templ.Component {
	return page("error", chefbook.Page{Meta: chefbook.PageMeta{Title: "Something went wrong"}})
}

// Default returns the ViewFuncs built from these pages.
func Default() chefbook.ViewFuncs {
	return chefbook.ViewFuncs{
		Gallery:       Gallery,
		Recipe:        Recipe,
		Cooking:       Cooking,
		ConfirmDelete: ConfirmDelete,
		NotFound:      NotFound,
		ServerError:   ServerError,
	}
}
