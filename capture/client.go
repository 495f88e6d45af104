package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/eringen/chefbook/csrf"
)

// SavePath is the endpoint drafts are posted to.
const SavePath = "/save_recipe"

// GalleryPath is where a successful save leads.
const GalleryPath = "/gallery"

// ErrEmptyDraft is returned when there is nothing to save.
var ErrEmptyDraft = errors.New("capture: empty recipe draft")

// SaveResponse is the server's answer to a save.
type SaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SaveError is a save the server refused or that never reached it.
type SaveError struct {
	// Message is the server's explanation, empty when it gave none.
	Message string
	// Err is the transport or decoding failure, if any.
	Err error
}

func (e *SaveError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "save failed"
	}
}

func (e *SaveError) Unwrap() error { return e.Err }

// Client talks to a chefbook server. It keeps cookies between calls so the
// CSRF cookie issued with a page is sent back with the save.
type Client struct {
	base *url.URL
	http *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{base: u}
	c.http = &http.Client{
		Jar:       jar,
		Timeout:   25 * time.Second,
		Transport: csrf.Transport(nil, c.Token),
	}
	return c, nil
}

// Token returns the CSRF token read from the last fetched page.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken overrides the CSRF token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.base.String() + path
	}
	return c.base.ResolveReference(ref).String()
}

// FetchPage loads a page, remembers its CSRF token and returns it parsed.
func (c *Client) FetchPage(ctx context.Context, path string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", path, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tok := csrf.TokenFromDocument(doc); tok != "" {
		c.SetToken(tok)
	}
	return doc, nil
}

// SaveRecipe posts the draft as JSON. A refused save is a *SaveError
// carrying the server's message.
func (c *Client) SaveRecipe(ctx context.Context, d Draft) (SaveResponse, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return SaveResponse{}, &SaveError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(SavePath), bytes.NewReader(body))
	if err != nil {
		return SaveResponse{}, &SaveError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SaveResponse{}, &SaveError{Err: err}
	}
	defer resp.Body.Close()

	var out SaveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SaveResponse{}, &SaveError{Err: fmt.Errorf("decode save response (status %d): %w", resp.StatusCode, err)}
	}
	if !out.Success {
		return out, &SaveError{Message: strings.TrimSpace(out.Message)}
	}
	return out, nil
}
