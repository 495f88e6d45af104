package chefbook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/eringen/chefbook/cooking"
)

func (b *browser) cook(path string, form url.Values) cooking.Snapshot {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", b.token)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := b.do(req)
	if rec.Code != http.StatusOK {
		b.t.Fatalf("POST %s = %d %s", path, rec.Code, rec.Body.String())
	}
	var snap cooking.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		b.t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func newCookingTest(t *testing.T) (*App, *browser, string) {
	t.Helper()
	a, views := newTestApp(t, SiteConfig{}, WithTimerOptions(cooking.WithTickInterval(time.Hour)))
	id := seed(t, a, Recipe{
		Title:        "Ciorbă",
		Ingredients:  []string{"beef", "carrots", "borș"},
		Instructions: []string{"Boil the beef.", "Add vegetables.", "Sour with borș."},
	})
	b := newBrowser(t, a, views)
	b.login()
	return a, b, "/recipe/" + itoa(id) + "/cook/"
}

func TestCookingPageShowsClosedSession(t *testing.T) {
	a, b, base := newCookingTest(t)
	if rec := b.get(base); rec.Code != http.StatusOK {
		t.Fatalf("GET %s = %d", base, rec.Code)
	}
	st := b.views.cooking.State
	if st.Open {
		t.Error("cooking mode should start closed")
	}
	if st.Timer.Display != "05:00" {
		t.Errorf("timer = %q, want 05:00", st.Timer.Display)
	}
	if len(b.views.cooking.Presets) == 0 {
		t.Error("no timer presets")
	}
	if a.Cooking.Len() != 0 {
		t.Errorf("sessions = %d after viewing the page, want 0", a.Cooking.Len())
	}

	b.cook(base+"start/", nil)
	if a.Cooking.Len() != 1 {
		t.Fatalf("sessions = %d after start, want 1", a.Cooking.Len())
	}
	b.get(base)
	if !b.views.cooking.State.Open {
		t.Error("page does not show the started session")
	}
}

func TestCookingGetsNeverCreateSessions(t *testing.T) {
	a, _, base := newCookingTest(t)
	for i := 0; i < 50; i++ {
		for _, path := range []string{base, base + "state/"} {
			// A fresh browser every time, carrying no cookies.
			rec := httptest.NewRecorder()
			a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("GET %s = %d", path, rec.Code)
			}
		}
	}
	if n := a.Cooking.Len(); n != 0 {
		t.Errorf("sessions = %d after cookieless GETs, want 0", n)
	}
}

func TestIdleCookingSessionsExpire(t *testing.T) {
	a, views := newTestApp(t, SiteConfig{CookingIdle: 20 * time.Millisecond},
		WithTimerOptions(cooking.WithTickInterval(time.Hour)))
	id := seed(t, a, Recipe{Title: "Mămăligă", Ingredients: []string{"cornmeal"}, Instructions: []string{"Stir."}})
	b := newBrowser(t, a, views)
	b.login()
	b.cook("/recipe/"+itoa(id)+"/cook/start/", nil)

	deadline := time.Now().Add(time.Second)
	for a.Cooking.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sessions = %d, idle session was not expired", a.Cooking.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCookingNavigation(t *testing.T) {
	_, b, base := newCookingTest(t)

	snap := b.cook(base+"start/", nil)
	if !snap.Open || snap.Step.Number != 1 || snap.Step.CanPrevious || !snap.Step.CanNext {
		t.Fatalf("start = %+v", snap.Step)
	}
	b.cook(base+"next/", nil)
	snap = b.cook(base+"next/", nil)
	if snap.Step.Number != 3 || snap.Step.CanNext || snap.Step.Text != "Sour with borș." {
		t.Fatalf("last step = %+v", snap.Step)
	}
	if snap.Step.Percent != 100 {
		t.Errorf("percent = %v, want 100", snap.Step.Percent)
	}
	// Next on the last step changes nothing.
	if snap = b.cook(base+"next/", nil); snap.Step.Number != 3 {
		t.Errorf("step = %d after next on last", snap.Step.Number)
	}
	if snap = b.cook(base+"previous/", nil); snap.Step.Number != 2 {
		t.Errorf("step = %d after previous", snap.Step.Number)
	}
}

func TestCookingRedirectsWithoutJSON(t *testing.T) {
	_, b, base := newCookingTest(t)
	form := url.Values{"_csrf": {b.token}}
	req := httptest.NewRequest(http.MethodPost, base+"start/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := b.do(req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != base {
		t.Fatalf("POST start = %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestCookingStepsAndIngredients(t *testing.T) {
	_, b, base := newCookingTest(t)

	snap := b.cook(base+"steps/2/done/", nil)
	if !snap.StepsDone[1] || snap.StepsDone[0] {
		t.Errorf("steps done = %v", snap.StepsDone)
	}
	// Idempotent.
	if snap = b.cook(base+"steps/2/done/", nil); !snap.StepsDone[1] {
		t.Errorf("step 2 undone by repeat")
	}

	snap = b.cook(base+"ingredients/0/", url.Values{"checked": {"true"}})
	b.cook(base+"ingredients/2/", url.Values{"checked": {"on"}})
	snap = b.cook(base+"ingredients/0/", url.Values{"checked": {"false"}})
	if snap.Progress.Checked != 1 || snap.Progress.Total != 3 {
		t.Errorf("progress = %+v", snap.Progress)
	}

	form := url.Values{"_csrf": {b.token}}
	for _, path := range []string{"steps/4/done/", "steps/0/done/", "ingredients/3/", "timer/step/9/"} {
		req := httptest.NewRequest(http.MethodPost, base+path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if rec := b.do(req); rec.Code != http.StatusBadRequest {
			t.Errorf("POST %s = %d, want 400", path, rec.Code)
		}
	}
}

func TestCookingTimer(t *testing.T) {
	a, b, base := newCookingTest(t)

	snap := b.cook(base+"timer/custom/", url.Values{"minutes": {"0"}})
	if snap.Timer.Remaining != cooking.DefaultTimerSeconds {
		t.Errorf("custom 0 minutes changed the timer to %d", snap.Timer.Remaining)
	}
	snap = b.cook(base+"timer/custom/", url.Values{"minutes": {"2"}})
	if snap.Timer.Display != "02:00" {
		t.Errorf("custom 2 minutes = %q", snap.Timer.Display)
	}
	snap = b.cook(base+"timer/set/", url.Values{"seconds": {"600"}})
	if snap.Timer.Remaining != 600 {
		t.Errorf("preset = %d", snap.Timer.Remaining)
	}
	snap = b.cook(base+"timer/step/2/", nil)
	if snap.Timer.Step != 2 {
		t.Errorf("timer step = %d", snap.Timer.Step)
	}

	snap = b.cook(base+"timer/toggle/", nil)
	if snap.Timer.Status != "running" {
		t.Fatalf("toggle = %q, want running", snap.Timer.Status)
	}
	snap = b.cook(base+"timer/toggle/", nil)
	if snap.Timer.Status != "stopped" || snap.Timer.Remaining != 600 {
		t.Errorf("second toggle = %+v", snap.Timer)
	}

	b.cook(base+"timer/toggle/", nil)
	snap = b.cook(base+"timer/reset/", nil)
	if snap.Timer.Status != "stopped" || snap.Timer.Remaining != cooking.DefaultTimerSeconds {
		t.Errorf("reset = %+v", snap.Timer)
	}

	// Closing stops the timer and drops the session.
	b.cook(base+"timer/toggle/", nil)
	req := httptest.NewRequest(http.MethodPost, base+"close/", strings.NewReader(url.Values{"_csrf": {b.token}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rec := b.do(req); rec.Code != http.StatusSeeOther {
		t.Fatalf("close = %d", rec.Code)
	}
	if a.Cooking.Len() != 0 {
		t.Errorf("sessions = %d after close", a.Cooking.Len())
	}
}

func TestCookingStateEndpoint(t *testing.T) {
	_, b, base := newCookingTest(t)
	rec := b.get(base + "state/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET state = %d", rec.Code)
	}
	var snap cooking.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Step.Total != 3 || len(snap.Ingredients) != 3 {
		t.Errorf("state = %+v", snap)
	}
}

func TestDeletingRecipeClosesItsSessions(t *testing.T) {
	a, b, base := newCookingTest(t)
	b.cook(base+"start/", nil)
	if a.Cooking.Len() != 1 {
		t.Fatalf("sessions = %d after start", a.Cooking.Len())
	}
	id := strings.TrimSuffix(strings.TrimPrefix(base, "/recipe/"), "/cook/")
	if rec := b.postForm("/delete_recipe/"+id, nil); rec.Code != http.StatusSeeOther {
		t.Fatalf("delete = %d", rec.Code)
	}
	if a.Cooking.Len() != 0 {
		t.Errorf("sessions = %d after delete", a.Cooking.Len())
	}
}
