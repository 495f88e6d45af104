// Package capture reads a rendered recipe page back into a structured draft
// and submits, copies or shares it.
package capture

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultDifficulty is used when the page shows no readable difficulty.
const DefaultDifficulty = 3

// Selectors of the rendered recipe page.
const (
	titleSelector       = "h1.display-5"
	ingredientsSelector = ".ingredients-list ul li"
	instructionSelector = ".instructions-list ol li"
	difficultySelector  = ".mb-3 .text-muted"
	wineSelector        = ".wine-pairing p"
)

var firstInt = regexp.MustCompile(`(\d+)`)

// Draft is a recipe as shown on a page, ready to be saved.
type Draft struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Difficulty   int      `json:"difficulty"`
	WinePairing  string   `json:"wine_pairing"`
}

// Empty reports whether nothing was captured.
func (d Draft) Empty() bool {
	return d.Title == "" && len(d.Ingredients) == 0 && len(d.Instructions) == 0
}

// Collect parses an HTML page and captures its recipe. Any failure yields an
// empty Draft.
func Collect(r io.Reader) Draft {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Draft{}
	}
	return CollectDocument(doc)
}

// CollectDocument captures the recipe of an already parsed page. A page
// without a title heading yields an empty Draft.
func CollectDocument(doc *goquery.Document) (d Draft) {
	defer func() {
		if recover() != nil {
			d = Draft{}
		}
	}()
	d, err := collect(doc)
	if err != nil {
		return Draft{}
	}
	return d
}

func collect(doc *goquery.Document) (Draft, error) {
	if doc == nil {
		return Draft{}, fmt.Errorf("no document")
	}
	title := doc.Find(titleSelector).First()
	if title.Length() == 0 {
		return Draft{}, fmt.Errorf("no %s element", titleSelector)
	}
	return Draft{
		Title:        strings.TrimSpace(title.Text()),
		Ingredients:  texts(doc.Find(ingredientsSelector)),
		Instructions: texts(doc.Find(instructionSelector)),
		Difficulty:   ParseDifficulty(doc.Find(difficultySelector).First().Text()),
		WinePairing:  strings.TrimSpace(doc.Find(wineSelector).First().Text()),
	}, nil
}

func texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// ParseDifficulty returns the first integer in label, or DefaultDifficulty
// when there is none or it is zero.
func ParseDifficulty(label string) int {
	m := firstInt.FindString(label)
	if m == "" {
		return DefaultDifficulty
	}
	n, err := strconv.Atoi(m)
	if err != nil || n == 0 {
		return DefaultDifficulty
	}
	return n
}
