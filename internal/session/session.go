// Package session provides pooled browsing sessions for the collector
// pipeline. A session wraps one colly collector with its own cookie jar, so
// logins and navigation state stay isolated between concurrent ticker tasks.
package session

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

type webSession struct {
	collector *colly.Collector

	// State of the most recent successful navigation.
	body       []byte
	currentURL string
}

func newWebSession(timeout time.Duration, userAgent string) (*webSession, error) {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(timeout)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	c.SetCookieJar(jar)

	s := &webSession{collector: c}
	c.OnResponse(func(r *colly.Response) {
		s.body = r.Body
		s.currentURL = r.Request.URL.String()
	})
	return s, nil
}

func (s *webSession) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.collector.Visit(url); err != nil {
		return fmt.Errorf("visit %s: %w", url, err)
	}
	s.collector.Wait()
	return nil
}

func (s *webSession) SubmitForm(ctx context.Context, url string, fields map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.collector.Post(url, fields); err != nil {
		return fmt.Errorf("post %s: %w", url, err)
	}
	s.collector.Wait()
	return nil
}

func (s *webSession) Document() (*goquery.Document, error) {
	if s.body == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(s.body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

func (s *webSession) Text() (string, error) {
	doc, err := s.Document()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Text()), nil
}

func (s *webSession) CurrentURL() string {
	return s.currentURL
}
