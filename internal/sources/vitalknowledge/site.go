// Package vitalknowledge fetches ticker research and macro news from the
// Vital Knowledge subscriber site. All fetches share the same flow: log in,
// open the latest morning report, open the latest market close report,
// extract.
package vitalknowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
)

const (
	baseURL  = "https://vitalknowledge.net"
	loginURL = baseURL + "/login"

	categoryMorning     = "morning"
	categoryMarketClose = "market-close"
)

var articleDateRe = regexp.MustCompile(`/article/(\d{4})/(\d{2})/(\d{2})/`)

// login authenticates the session. Missing credentials are an immediate
// error so a misconfigured deployment fails this source and nothing else.
func login(ctx context.Context, s interfaces.Session) error {
	username := os.Getenv("Vital_login")
	password := os.Getenv("Vital_password")
	if username == "" || password == "" {
		return errors.New("missing Vital_login or Vital_password in environment")
	}

	logger.Debug(ctx, "Logging in to Vital Knowledge")
	if err := s.Goto(ctx, loginURL); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}
	if err := s.SubmitForm(ctx, loginURL, map[string]string{
		"email":    username,
		"password": password,
	}); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	return nil
}

// openLatestReport navigates to the newest article in a category and returns
// its date and URL. The date comes from the article URL path; if the URL
// has no date, today is assumed.
func openLatestReport(ctx context.Context, s interfaces.Session, category string) (date, url string, err error) {
	listURL := fmt.Sprintf("%s/?category=%s", baseURL, category)
	if err := s.Goto(ctx, listURL); err != nil {
		return "", "", fmt.Errorf("load %s report list: %w", category, err)
	}

	doc, err := s.Document()
	if err != nil {
		return "", "", fmt.Errorf("parse %s report list: %w", category, err)
	}

	href, found := doc.Find("a[href*='/article/']").First().Attr("href")
	if !found {
		return "", "", fmt.Errorf("no %s report link found", category)
	}
	if strings.HasPrefix(href, "/") {
		href = baseURL + href
	}

	if err := s.Goto(ctx, href); err != nil {
		return "", "", fmt.Errorf("open %s report: %w", category, err)
	}

	url = s.CurrentURL()
	date = articleDate(url)
	logger.Debug(ctx, "Opened Vital Knowledge report", "category", category, "date", date, "url", url)
	return date, url, nil
}

// articleDate pulls YYYY-MM-DD out of an article URL, falling back to today.
func articleDate(url string) string {
	if m := articleDateRe.FindStringSubmatch(url); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
	}
	return time.Now().Format("2006-01-02")
}
