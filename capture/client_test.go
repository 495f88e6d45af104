package capture

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/chefbook/csrf"
)

type received struct {
	token string
	draft Draft
}

// fakeServer serves resultPage and answers saves with resp.
func fakeServer(t *testing.T, resp string) (*httptest.Server, chan received) {
	t.Helper()
	got := make(chan received, 4)
	mux := http.NewServeMux()
	mux.HandleFunc("/recipe/1/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "_csrf", Value: "tok", Path: "/"})
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(resultPage))
	})
	mux.HandleFunc(SavePath, func(w http.ResponseWriter, r *http.Request) {
		var d Draft
		_ = json.NewDecoder(r.Body).Decode(&d)
		got <- received{token: r.Header.Get(csrf.HeaderName), draft: d}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(resp))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, got
}

func TestClientFetchAndSave(t *testing.T) {
	srv, got := fakeServer(t, `{"success":true,"message":"saved"}`)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	doc, err := c.FetchPage(context.Background(), "/recipe/1/")
	require.NoError(t, err)
	assert.Equal(t, "tok", c.Token())

	d := CollectDocument(doc)
	out, err := c.SaveRecipe(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, out.Success)

	r := <-got
	assert.Equal(t, "tok", r.token)
	assert.Equal(t, d, r.draft)
}

func TestClientSaveRefused(t *testing.T) {
	srv, _ := fakeServer(t, `{"success":false,"message":"x"}`)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.SaveRecipe(context.Background(), Draft{Title: "t"})
	var se *SaveError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "x", se.Message)
}

func TestClientSaveBadResponse(t *testing.T) {
	srv, _ := fakeServer(t, `Forbidden`)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.SaveRecipe(context.Background(), Draft{Title: "t"})
	var se *SaveError
	require.True(t, errors.As(err, &se))
	assert.Empty(t, se.Message)
	assert.Error(t, se.Err)
	assert.True(t, strings.Contains(se.Error(), "decode save response"))
}

func TestClientFetchStatus(t *testing.T) {
	srv, _ := fakeServer(t, `{}`)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	_, err = c.FetchPage(context.Background(), "/missing")
	assert.Error(t, err)
}
