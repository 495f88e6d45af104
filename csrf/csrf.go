// Package csrf attaches the page's CSRF token to outgoing requests.
//
// Instead of patching a shared client, callers wrap their transport:
//
//	client := &http.Client{Transport: csrf.Transport(nil, csrf.Static(token))}
package csrf

import (
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HeaderName is the header the server reads the token from.
const HeaderName = "X-CSRFToken"

// MetaName is the name of the meta element carrying the token in pages.
const MetaName = "csrf-token"

// TokenSource returns the current token. An empty token is still sent.
type TokenSource func() string

// Static returns a TokenSource that always yields token.
func Static(token string) TokenSource {
	return func() string { return token }
}

type transport struct {
	base  http.RoundTripper
	token TokenSource
}

// Transport wraps base so every request carries HeaderName. A header the
// caller already set is left alone. A nil base uses http.DefaultTransport.
func Transport(base http.RoundTripper, token TokenSource) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{base: base, token: token}
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if _, ok := req.Header[http.CanonicalHeaderKey(HeaderName)]; ok {
		return t.base.RoundTrip(req)
	}
	token := ""
	if t.token != nil {
		token = t.token()
	}
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set(HeaderName, token)
	return t.base.RoundTrip(r)
}

// TokenFromDocument reads the token from the page's meta element, or ""
// when the page has none.
func TokenFromDocument(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	v, _ := doc.Find(`meta[name="` + MetaName + `"]`).First().Attr("content")
	return strings.TrimSpace(v)
}

// TokenFromHTML parses r and reads the token like TokenFromDocument.
func TokenFromHTML(r io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ""
	}
	return TokenFromDocument(doc)
}
