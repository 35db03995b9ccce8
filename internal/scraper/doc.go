// Package scraper provides HTTP fetching and HTML parsing for the registration code list.
//
// The scraper package fetches the public code list page with a single GET and reads the
// rows of its code table by fixed column position: code, place, district (skipped) and
// federal state. A missing table or a short row aborts the run rather than yielding a
// partial list.
package scraper
