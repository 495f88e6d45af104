package chefbook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/chefbook/csrf"
)

// captured records the data handed to each view.
type captured struct {
	gallery GalleryPage
	recipe  RecipePage
	cooking CookingPage
	del     DeletePage
}

func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func stubViews(c *captured) ViewFuncs {
	return ViewFuncs{
		Gallery:       func(p GalleryPage) templ.Component { c.gallery = p; return text("gallery") },
		Recipe:        func(p RecipePage) templ.Component { c.recipe = p; return text("recipe") },
		Cooking:       func(p CookingPage) templ.Component { c.cooking = p; return text("cooking") },
		ConfirmDelete: func(p DeletePage) templ.Component { c.del = p; return text("confirm") },
		NotFound:      func() templ.Component { return text("not found") },
		ServerError:   func() templ.Component { return text("server error") },
	}
}

func newTestApp(t *testing.T, cfg SiteConfig, opts ...Option) (*App, *captured) {
	t.Helper()
	views := &captured{}
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	cfg.LogLevel = "off"
	a := New(cfg, stubViews(views), opts...)
	if err := a.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, views
}

// browser replays cookies between requests like a real client.
type browser struct {
	t       *testing.T
	app     *App
	views   *captured
	cookies map[string]*http.Cookie
	token   string
}

func newBrowser(t *testing.T, a *App, views *captured) *browser {
	return &browser{t: t, app: a, views: views, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.app.Echo.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

// login fetches the gallery to obtain session and CSRF cookies.
func (b *browser) login() {
	b.t.Helper()
	if rec := b.get("/gallery/"); rec.Code != http.StatusOK {
		b.t.Fatalf("GET /gallery/ = %d", rec.Code)
	}
	b.token = b.views.gallery.CSRFToken
	if b.token == "" {
		b.t.Fatal("no CSRF token on gallery page")
	}
}

func (b *browser) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", b.token)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postJSON(target string, body any) *httptest.ResponseRecorder {
	b.t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			b.t.Fatalf("marshal: %v", err)
		}
		r = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(http.MethodPost, target, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(csrf.HeaderName, b.token)
	return b.do(req)
}

func TestSetupRequiresSessionSecret(t *testing.T) {
	a := New(SiteConfig{DatabasePath: filepath.Join(t.TempDir(), "x.db")}, ViewFuncs{})
	if err := a.Setup(); err == nil {
		t.Fatal("expected error without SessionSecret")
	}
}

func TestHomeRedirectsToGallery(t *testing.T) {
	a, views := newTestApp(t, SiteConfig{})
	rec := newBrowser(t, a, views).get("/")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/gallery/" {
		t.Errorf("Location = %q", loc)
	}
}

func TestUnknownRecipeIsNotFound(t *testing.T) {
	a, views := newTestApp(t, SiteConfig{})
	b := newBrowser(t, a, views)
	for _, path := range []string{"/recipe/999/", "/recipe/abc/", "/recipe/999/delete/", "/recipe/999/cook/"} {
		rec := b.get(path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "not found") {
			t.Errorf("GET %s did not render the not found page", path)
		}
	}
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	a, views := newTestApp(t, SiteConfig{})
	id := seed(t, a, Recipe{Title: "Toast", Ingredients: []string{"bread"}, Instructions: []string{"toast"}})

	b := newBrowser(t, a, views)
	b.login()
	b.token = "wrong"
	rec := b.postForm("/delete_recipe/"+itoa(id), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if _, err := a.Store.GetRecipe(id); err != nil {
		t.Fatalf("recipe was deleted without a valid token: %v", err)
	}
}
