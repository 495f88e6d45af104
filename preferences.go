package chefbook

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/chefbook/filter"
)

// sessionPreferences keeps the gallery filters in the browser's session
// cookie so they survive reloads.
type sessionPreferences struct {
	c echo.Context
}

var _ filter.Store = sessionPreferences{}

func (p sessionPreferences) Load() (string, bool) {
	sess, err := session.Get(sessionName, p.c)
	if err != nil {
		return "", false
	}
	raw, ok := sess.Values[filter.StorageKey].(string)
	return raw, ok
}

func (p sessionPreferences) Save(raw string) error {
	sess, err := session.Get(sessionName, p.c)
	if err != nil {
		return err
	}
	sess.Values[filter.StorageKey] = raw
	return sess.Save(p.c.Request(), p.c.Response())
}

// preferencesFromQuery reads a filter change from the gallery form. It
// reports false when the request carries no filter parameters, in which
// case the stored preferences apply.
func preferencesFromQuery(c echo.Context, current filter.Preferences) (filter.Preferences, bool) {
	q := c.QueryParams()
	changed := false
	p := current
	if _, ok := q["search"]; ok {
		p.Search = q.Get("search")
		changed = true
	}
	if _, ok := q["difficulty"]; ok {
		p.Difficulty = q.Get("difficulty")
		changed = true
	}
	if _, ok := q["sort"]; ok {
		p.Sort = filter.Sort(q.Get("sort"))
		changed = true
	}
	return p, changed
}
