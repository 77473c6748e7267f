// Package browser renders the source page and exposes its elements.
//
// A Renderer opens a Session against a URL once the page has loaded and
// its client-side scripts have settled. Sessions hold external resources
// (a Chrome process, a tab) and must always be closed.
package browser

import "context"

// Element is the href and visible text of one matched DOM element.
type Element struct {
	Href string
	Text string
}

// Session is a rendered page that can be queried until it is closed.
type Session interface {
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	Close() error
}

// Renderer loads a URL and returns a settled Session.
type Renderer interface {
	Open(ctx context.Context, pageURL string) (Session, error)
}
