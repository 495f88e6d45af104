// Package chefbook is a recipe gallery built with Go, Echo, and templ.
// It saves generated recipes, lists them with persistent search and sorting,
// and runs step-by-step cooking sessions with countdown timers.
//
// Templates are provided through the ViewFuncs struct; chefbook handles the
// handler logic, middleware, and database operations.
package chefbook

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/chefbook/cooking"
)

// ViewFuncs holds the templ components the app calls when rendering pages.
type ViewFuncs struct {
	Gallery       func(p GalleryPage) templ.Component
	Recipe        func(p RecipePage) templ.Component
	Cooking       func(p CookingPage) templ.Component
	ConfirmDelete func(p DeletePage) templ.Component
	NotFound      func() templ.Component
	ServerError   func() templ.Component
}

// App is the central chefbook application. It wires together the store,
// cache, cooking sessions, handlers, middleware, and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *RecipeCache
	Views   ViewFuncs
	Cooking *cooking.Registry

	saveLimiter  *SaveLimiter
	timerOpts    []cooking.TimerOption
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new chefbook App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(logLevel(cfg.LogLevel))

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the database and registers middleware and routes without
// listening. Start calls it; tests use it with Echo.ServeHTTP.
func (a *App) Setup() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("chefbook: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("chefbook: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewRecipeCache(a.Store, a.Config.CacheTTL)
	a.saveLimiter = NewSaveLimiter(a.Config.SaveLimit, a.Config.SaveWindow)
	a.Cooking = cooking.NewRegistry(a.Echo.Logger, a.timerOpts...)
	a.Cooking.ExpireIdle(a.Config.CookingIdle)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("chefbook listening on %s", a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", handleHomeRedirect)
	e.GET("/gallery/", a.handleGallery)
	e.GET("/recipe/:id/", a.handleRecipe)
	e.GET("/recipe/:id/delete/", a.handleDeleteConfirm)

	e.POST("/save_recipe", a.handleSaveRecipe)
	e.POST("/delete_recipe/:id", a.handleDeleteRecipe)

	cook := e.Group("/recipe/:id/cook")
	cook.GET("/", a.handleCooking)
	cook.GET("/state/", a.handleCookingState)
	cook.POST("/start/", a.handleCookingStart)
	cook.POST("/next/", a.handleCookingNext)
	cook.POST("/previous/", a.handleCookingPrevious)
	cook.POST("/close/", a.handleCookingClose)
	cook.POST("/steps/:n/done/", a.handleStepDone)
	cook.POST("/ingredients/:i/", a.handleIngredient)
	cook.POST("/timer/toggle/", a.handleTimerToggle)
	cook.POST("/timer/reset/", a.handleTimerReset)
	cook.POST("/timer/set/", a.handleTimerSet)
	cook.POST("/timer/custom/", a.handleTimerCustom)
	cook.POST("/timer/step/:n/", a.handleTimerStep)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Cooking != nil {
		a.Cooking.CloseAll()
	}
	if a.saveLimiter != nil {
		a.saveLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
