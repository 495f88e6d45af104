package views

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/chefbook"
	"github.com/eringen/chefbook/capture"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	app := chefbook.New(chefbook.SiteConfig{
		DatabasePath:  filepath.Join(t.TempDir(), "recipes.db"),
		SessionSecret: "test-secret-test-secret-test-secr",
		LogLevel:      "off",
	}, Default())
	require.NoError(t, app.Setup())
	srv := httptest.NewServer(app.Echo)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return srv
}

func TestCaptureSaveRoundTrip(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	client, err := capture.NewClient(srv.URL)
	require.NoError(t, err)
	_, err = client.FetchPage(ctx, "/gallery/")
	require.NoError(t, err)
	require.NotEmpty(t, client.Token())

	saved := sample.Draft()
	rec := &navRecorder{}
	flow := &capture.SaveFlow{Saver: client, Control: capture.NewButton("Save"), Alerter: rec, Navigator: rec}
	require.NoError(t, flow.Run(ctx, saved))
	assert.Equal(t, []string{capture.GalleryPath}, rec.paths)

	gallery, err := client.FetchPage(ctx, capture.GalleryPath)
	require.NoError(t, err)
	link, ok := gallery.Find("article.recipe-card a").First().Attr("href")
	require.True(t, ok)

	page, err := client.FetchPage(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, saved, capture.CollectDocument(page))
}

func TestSaveWithoutTokenIsRefused(t *testing.T) {
	srv := newServer(t)
	client, err := capture.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.SaveRecipe(context.Background(), sample.Draft())
	var se *capture.SaveError
	require.True(t, errors.As(err, &se))
	assert.NotEmpty(t, se.Message)
}

func TestSaveValidation(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	client, err := capture.NewClient(srv.URL)
	require.NoError(t, err)
	_, err = client.FetchPage(ctx, "/gallery/")
	require.NoError(t, err)

	_, err = client.SaveRecipe(ctx, capture.Draft{Title: "Just a title"})
	var se *capture.SaveError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Message, "ingredient")
}

type navRecorder struct {
	paths  []string
	alerts []string
}

func (n *navRecorder) Navigate(path string) { n.paths = append(n.paths, path) }
func (n *navRecorder) Alert(msg string)     { n.alerts = append(n.alerts, msg) }
