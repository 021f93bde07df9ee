package interfaces

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Session is one isolated, navigable browsing resource. A session belongs
// to exactly one fetch attempt at a time and is never shared across
// connectors.
type Session interface {
	// Goto navigates to a URL and loads the page into the session.
	Goto(ctx context.Context, url string) error

	// SubmitForm posts form fields to a URL and loads the response page,
	// keeping any cookies the site sets (login flows).
	SubmitForm(ctx context.Context, url string, fields map[string]string) error

	// Document returns the current page parsed for DOM queries.
	Document() (*goquery.Document, error)

	// Text returns the visible text of the current page, suitable as
	// extraction input.
	Text() (string, error)

	// CurrentURL returns the final URL of the current page, after redirects.
	CurrentURL() string
}

// SessionProvider acquires and releases sessions. Acquisition may fail;
// release is best effort and its errors are logged, never raised.
type SessionProvider interface {
	Acquire(ctx context.Context) (Session, error)
	Release(s Session) error
}
