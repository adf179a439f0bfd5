// Package extract implements the extraction strategies and the
// coordinator that merges their output into a single partial record.
package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/normalize"
)

// Document is one parsed HTML page. All strategies operate on the same
// document; none of them perform any I/O.
type Document struct {
	doc *goquery.Document

	rawHTML string

	// visibleText is assembled lazily; body text extraction walks the
	// whole tree and not every strategy needs it.
	visibleText string
	textBuilt   bool
}

// Context carries the source metadata for one extraction run
type Context struct {
	SourcePlatform string
	SourceURL      string
	SourceDomain   string
	ScrapedAt      time.Time
}

// NewContext builds the extraction context, deriving the source domain
// from the URL.
func NewContext(sourcePlatform, sourceURL string, scrapedAt time.Time) Context {
	return Context{
		SourcePlatform: sourcePlatform,
		SourceURL:      sourceURL,
		SourceDomain:   models.ExtractDomain(sourceURL),
		ScrapedAt:      scrapedAt,
	}
}

// ParseDocument parses raw HTML into a Document. goquery tolerates
// malformed markup, so this only fails on empty input.
func ParseDocument(html string) (*Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("empty document")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return &Document{doc: doc, rawHTML: html}, nil
}

// Find exposes selector queries to the strategies
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// VisibleText returns the page's visible text with scripts and styles
// dropped and whitespace collapsed.
func (d *Document) VisibleText() string {
	if d.textBuilt {
		return d.visibleText
	}

	clone := d.doc.Clone()
	clone.Find("script, style, noscript").Remove()
	d.visibleText = normalize.CleanText(clone.Find("body").Text())
	if d.visibleText == "" {
		d.visibleText = normalize.CleanText(clone.Text())
	}
	d.textBuilt = true
	return d.visibleText
}

// RawHTML returns the unparsed source markup
func (d *Document) RawHTML() string {
	return d.rawHTML
}
