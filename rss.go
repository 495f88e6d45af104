package chefbook

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// feedDescription summarizes a recipe as its difficulty and first ingredients.
func feedDescription(r Recipe) string {
	desc := fmt.Sprintf("Difficulty %d/5.", r.Difficulty)
	if preview := r.Preview(3); len(preview) > 0 {
		desc += " " + strings.Join(preview, ", ")
		if len(r.Ingredients) > len(preview) {
			desc += ", ..."
		}
	}
	return desc
}

func (a *App) renderRSS(c echo.Context, recipes []Recipe) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(recipes))
	for _, r := range recipes {
		recipeURL := BuildURL(base, "recipe", strconv.FormatInt(r.ID, 10))
		items = append(items, rssItem{
			Title:       r.Title,
			Link:        recipeURL,
			Description: feedDescription(r),
			PubDate:     r.CreatedAt.UTC().Format(time.RFC1123Z),
			GUID:        recipeURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base, "gallery"),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
