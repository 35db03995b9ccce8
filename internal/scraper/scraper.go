package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/kennzeichen/internal/record"
)

const (
	CodeListURL   = "https://www.kennzeichenking.de/kfz-kennzeichen-liste"
	UserAgent     = "kennzeichen-cli/1.0 (github.com/pfrederiksen/kennzeichen)"
	TableSelector = ".b-table table tbody"
)

// Column positions within a code table row
const (
	colCode     = 0
	colPlace    = 1
	colDistrict = 2 // skipped
	colState    = 3
	minColumns  = colState + 1
)

// ErrTableNotFound is returned when the page lacks the code table
var ErrTableNotFound = errors.New("table not found")

// RequestError reports a non-success HTTP response
type RequestError struct {
	StatusCode int
	Status     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %s", e.Status)
}

// RowError reports a table row without the expected columns
type RowError struct {
	Row     int
	Columns int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: expected at least %d columns, got %d", e.Row, minColumns, e.Columns)
}

// Scraper fetches and parses the registration code table
type Scraper struct {
	client    *http.Client
	url       string
	userAgent string
}

// New creates a Scraper for the given URL. An empty url falls back to CodeListURL.
func New(url, userAgent string) *Scraper {
	if url == "" {
		url = CodeListURL
	}
	if userAgent == "" {
		userAgent = UserAgent
	}
	return &Scraper{
		client:    &http.Client{},
		url:       url,
		userAgent: userAgent,
	}
}

// URL returns the page the scraper reads from
func (s *Scraper) URL() string {
	return s.url
}

// Fetch performs a single GET and returns the page body
func (s *Scraper) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RequestError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return string(body), nil
}

// FetchRecords fetches the page and extracts the raw, unfixed records
func (s *Scraper) FetchRecords(ctx context.Context) ([]*record.Record, error) {
	body, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Extract(strings.NewReader(body))
}

// Extract reads one record per row of the code table, in row order
func Extract(r io.Reader) ([]*record.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	tbody := doc.Find(TableSelector).First()
	if tbody.Length() == 0 {
		return nil, ErrTableNotFound
	}

	records := make([]*record.Record, 0)
	var rowErr error

	tbody.ChildrenFiltered("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Children()
		if cells.Length() < minColumns {
			rowErr = &RowError{Row: i, Columns: cells.Length()}
			return false
		}

		records = append(records, record.New(
			cellText(cells, colCode),
			cellText(cells, colPlace),
			cellText(cells, colState),
		))
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}

	return records, nil
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}
