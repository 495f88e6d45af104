package chefbook

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/chefbook/cooking"
)

// cookingSession resolves the recipe and this browser's session on it,
// opening one when needed.
func (a *App) cookingSession(c echo.Context) (*cooking.Session, Recipe, error) {
	r, err := a.recipeParam(c)
	if err != nil {
		return nil, Recipe{}, err
	}
	browser, err := BrowserID(c)
	if err != nil {
		return nil, Recipe{}, err
	}
	return a.Cooking.GetOrOpen(browser, r.ID, r.Instructions, r.Ingredients), r, nil
}

// cookingView returns this browser's session on the recipe for display
// without registering one. A browser that has not started cooking sees a
// fresh session that is discarded after the response.
func (a *App) cookingView(c echo.Context) (*cooking.Session, Recipe, error) {
	r, err := a.recipeParam(c)
	if err != nil {
		return nil, Recipe{}, err
	}
	if browser := knownBrowserID(c); browser != "" {
		if s, err := a.Cooking.Get(browser, r.ID); err == nil {
			return s, r, nil
		}
	}
	return cooking.NewSession("", r.ID, r.Instructions, r.Ingredients), r, nil
}

// cookingReply answers a cooking mutation: JSON state for scripts, otherwise
// a redirect back to the cooking page.
func (a *App) cookingReply(c echo.Context, s *cooking.Session, r Recipe) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, s.Snapshot(c.Request().Context()))
	}
	return c.Redirect(http.StatusSeeOther, r.Link()+"cook/")
}

// cookingError maps session range errors onto 400s.
func cookingError(err error) error {
	if errors.Is(err, cooking.ErrStepOutOfRange) || errors.Is(err, cooking.ErrIngredientOutOfRange) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return err
}

func (a *App) handleCooking(c echo.Context) error {
	s, r, err := a.cookingView(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Cooking(CookingPage{
		Page:    a.newPage(c, "Cooking "+r.Title, "", "recipe", strconv.FormatInt(r.ID, 10), "cook"),
		Recipe:  r,
		State:   s.Snapshot(c.Request().Context()),
		Presets: cooking.Presets,
	}))
}

func (a *App) handleCookingState(c echo.Context) error {
	s, _, err := a.cookingView(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Snapshot(c.Request().Context()))
}

func (a *App) handleCookingStart(c echo.Context) error {
	s, r, err := a.cookingSession(c)
	if err != nil {
		return err
	}
	s.Start()
	return a.cookingReply(c, s, r)
}

func (a *App) handleCookingNext(c echo.Context) error {
	s, r, err := a.cookingSession(c)
	if err != nil {
		return err
	}
	s.Next()
	return a.cookingReply(c, s, r)
}

func (a *App) handleCookingPrevious(c echo.Context) error {
	s, r, err := a.cookingSession(c)
	if err != nil {
		return err
	}
	s.Previous()
	return a.cookingReply(c, s, r)
}

func (a *App) handleCookingClose(c echo.Context) error {
	r, err := a.recipeParam(c)
	if err != nil {
		return err
	}
	browser, err := BrowserID(c)
	if err != nil {
		return err
	}
	a.Cooking.Close(browser, r.ID)
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, map[string]bool{"open": false})
	}
	return c.Redirect(http.StatusSeeOther, r.Link())
}

func (a *App) handleStepDone(c echo.Context) error {
	s, r, err := a.cookingSession(c)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid step")
	}
	if _, err := s.MarkStepDone(n); err != nil {
		return cookingError(err)
	}
	return a.cookingReply(c, s, r)
}

func (a *App) handleIngredient(c echo.Context) error {
	s, r, err := a.cookingSession(c)
	if err != nil {
		return err
	}
	i, err := strconv.Atoi(c.Param("i"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid ingredient")
	}
	checked, _ := strconv.ParseBool(c.FormValue("checked"))
	if c.FormValue("checked") == "on" {
		checked = true
	}
	if _, err := s.ToggleIngredient(i, checked); err != nil {
		return cookingError(err)
	}
	return a.cookingReply(c, s, r)
}

func (a *App) handleTimerToggle(c echo.Context) error {
	s, r, err := a.cookingSession(c)
	if err != nil {
		return err
	}
	// Timers run on the registry's context, not the request's.
	s.Timer().Toggle(a.Cooking.Context())
	return a.cookingReply(c, s, r)
}

func (a *App) handleTimerReset(c echo.Context) error {
	s, r, err := a.cookingSession(c)
	if err != nil {
		return err
	}
	s.Timer().Reset()
	return a.cookingReply(c, s, r)
}

func (a *App) handleTimerSet(c echo.Context) error {
	s, r, err := a.cookingSession(c)
	if err != nil {
		return err
	}
	seconds, err := strconv.Atoi(c.FormValue("seconds"))
	if err != nil || seconds < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid seconds")
	}
	s.Timer().Set(seconds)
	return a.cookingReply(c, s, r)
}

func (a *App) handleTimerCustom(c echo.Context) error {
	s, r, err := a.cookingSession(c)
	if err != nil {
		return err
	}
	// Anything that is not a positive number of minutes is ignored.
	minutes, _ := strconv.Atoi(c.FormValue("minutes"))
	s.Timer().SetMinutes(minutes)
	return a.cookingReply(c, s, r)
}

func (a *App) handleTimerStep(c echo.Context) error {
	s, r, err := a.cookingSession(c)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid step")
	}
	if err := s.OpenTimer(n); err != nil {
		return cookingError(err)
	}
	return a.cookingReply(c, s, r)
}
