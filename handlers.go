package chefbook

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/chefbook/capture"
	"github.com/eringen/chefbook/filter"
)

const (
	msgSaved          = "Recipe saved successfully!"
	msgDeleted        = "Recipe deleted successfully!"
	msgSaveFailed     = "Could not save recipe"
	msgInvalidRecipe  = "Invalid recipe data"
	msgNeedTitle      = "A recipe needs a title"
	msgNeedIngredient = "A recipe needs at least one ingredient"
	msgNeedStep       = "A recipe needs at least one instruction"
	msgSlowDown       = "Too many recipes saved. Try again in a minute."
)

// saveResult is the /save_recipe answer.
type saveResult struct {
	capture.SaveResponse
	ID int64 `json:"id,omitempty"`
}

func handleHomeRedirect(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/gallery/")
}

func (a *App) handleGallery(c echo.Context) error {
	recipes, err := a.Cache.ListRecipes()
	if err != nil {
		return err
	}
	summaries := make([]filter.Summary, len(recipes))
	for i, r := range recipes {
		summaries[i] = filter.NewSummary(i, r.Difficulty, r.Title, r.CreatedAt)
	}

	engine := filter.New(summaries, sessionPreferences{c: c})
	view := engine.Recompute()
	if p, ok := preferencesFromQuery(c, engine.Preferences()); ok {
		view, err = engine.Apply(p)
		if err != nil {
			c.Logger().Warnf("save gallery filters: %v", err)
		}
	}

	cards := make([]GalleryCard, 0, len(recipes))
	shown := make(map[int]bool, len(view.Visible))
	for i, ref := range view.Visible {
		shown[ref] = true
		cards = append(cards, GalleryCard{Recipe: recipes[ref], Visible: true, Delay: view.Delays[i]})
	}
	for i, r := range recipes {
		if !shown[i] {
			cards = append(cards, GalleryCard{Recipe: r})
		}
	}

	return Render(c, a.Views.Gallery(GalleryPage{
		Page:      a.newPage(c, "Recipe Gallery", "", "gallery"),
		Cards:     cards,
		Filters:   engine.Preferences(),
		Sorts:     filter.Sorts,
		NoResults: view.NoResults && len(recipes) > 0,
	}))
}

// recipeParam loads the recipe named by the :id path parameter.
func (a *App) recipeParam(c echo.Context) (Recipe, error) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return Recipe{}, echo.ErrNotFound
	}
	r, err := a.Cache.GetRecipe(id)
	if errors.Is(err, ErrNotFound) {
		return Recipe{}, echo.ErrNotFound
	}
	return r, err
}

func (a *App) handleRecipe(c echo.Context) error {
	r, err := a.recipeParam(c)
	if err != nil {
		return err
	}
	id := strconv.FormatInt(r.ID, 10)
	pageURL := BuildURL(a.Config.URL, "recipe", id)
	share := make([]ShareLink, 0, 3)
	for _, p := range []capture.Platform{capture.Facebook, capture.Twitter, capture.WhatsApp} {
		share = append(share, ShareLink{Platform: p, URL: capture.ShareURL(p, pageURL)})
	}
	return Render(c, a.Views.Recipe(RecipePage{
		Page:      a.newPage(c, r.Title, strings.Join(r.Preview(3), ", "), "recipe", id),
		Recipe:    r,
		JSONLD:    RecipeJsonLD(r, a.Config),
		PlainText: capture.FormatText(r.Draft()),
		Share:     share,
		Delete:    StageDelete(r.ID, r.Title),
	}))
}

func (a *App) handleDeleteConfirm(c echo.Context) error {
	r, err := a.recipeParam(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.ConfirmDelete(DeletePage{
		Page:    a.newPage(c, "Delete "+r.Title, "", "recipe", strconv.FormatInt(r.ID, 10), "delete"),
		Confirm: StageDelete(r.ID, r.Title),
	}))
}

func (a *App) handleDeleteRecipe(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	if err := a.Store.DeleteRecipe(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	a.Cache.Invalidate()
	a.Cooking.CloseRecipe(id)
	c.Logger().Infof("recipe %d deleted", id)
	if err := AddFlash(c, msgDeleted); err != nil {
		c.Logger().Warnf("flash: %v", err)
	}
	return c.Redirect(http.StatusSeeOther, "/gallery/")
}

func (a *App) handleSaveRecipe(c echo.Context) error {
	if !a.saveLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, saveResult{SaveResponse: capture.SaveResponse{Message: msgSlowDown}})
	}
	var d capture.Draft
	if err := c.Bind(&d); err != nil {
		return c.JSON(http.StatusBadRequest, saveResult{SaveResponse: capture.SaveResponse{Message: msgInvalidRecipe}})
	}
	r, msg := recipeFromDraft(d)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, saveResult{SaveResponse: capture.SaveResponse{Message: msg}})
	}
	id, err := a.Store.SaveRecipe(r)
	if err != nil {
		c.Logger().Errorf("save recipe %q: %v", r.Title, err)
		return c.JSON(http.StatusInternalServerError, saveResult{SaveResponse: capture.SaveResponse{Message: msgSaveFailed}})
	}
	a.Cache.Invalidate()
	c.Logger().Infof("recipe %d saved: %s", id, r.Title)
	return c.JSON(http.StatusOK, saveResult{
		SaveResponse: capture.SaveResponse{Success: true, Message: msgSaved},
		ID:           id,
	})
}

// recipeFromDraft validates a posted draft. The returned message is empty
// when the draft is acceptable.
func recipeFromDraft(d capture.Draft) (Recipe, string) {
	r := Recipe{
		Title:        strings.TrimSpace(d.Title),
		Ingredients:  FlattenLines(d.Ingredients),
		Instructions: FlattenLines(d.Instructions),
		Difficulty:   ClampDifficulty(d.Difficulty),
		WinePairing:  strings.TrimSpace(d.WinePairing),
	}
	switch {
	case r.Title == "":
		return r, msgNeedTitle
	case len(r.Ingredients) == 0:
		return r, msgNeedIngredient
	case len(r.Instructions) == 0:
		return r, msgNeedStep
	}
	return r, ""
}

func (a *App) handleSitemap(c echo.Context) error {
	recipes, err := a.Cache.ListRecipes()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, recipes)
}

func (a *App) handleFeed(c echo.Context) error {
	recipes, err := a.Cache.ListRecipes()
	if err != nil {
		return err
	}
	return a.renderRSS(c, recipes)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound && !wantsJSON(c) {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if !wantsJSON(c) {
			_ = RenderStatus(c, code, a.Views.ServerError())
			return
		}
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
