package extract

import (
	"fmt"
	"strings"

	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/normalize"
)

// MetaTagStrategy reads Open Graph and plain meta tags. Meta content is
// present on almost every page but is written for link previews, not
// listings, so confidences sit below the selector tier.
type MetaTagStrategy struct{}

// NewMetaTagStrategy creates the meta tag strategy
func NewMetaTagStrategy() *MetaTagStrategy {
	return &MetaTagStrategy{}
}

// Name implements Strategy
func (s *MetaTagStrategy) Name() string { return StrategyMetaTag }

// Priority implements Strategy
func (s *MetaTagStrategy) Priority() int { return PriorityMetaTag }

// Extract implements Strategy
func (s *MetaTagStrategy) Extract(doc *Document, ctx Context) []models.RawField {
	var fields []models.RawField

	add := func(name, value string, confidence float64) {
		value = normalize.CleanText(value)
		if value != "" {
			fields = append(fields, field(name, value, confidence, StrategyMetaTag, PriorityMetaTag))
		}
	}

	if title := metaContent(doc, "og:title"); title != "" {
		add(models.FieldTitle, stripSiteSuffix(title), 0.6)
	} else if title := normalize.CleanText(doc.Find("title").First().Text()); title != "" {
		add(models.FieldTitle, stripSiteSuffix(title), 0.5)
	}

	if desc := metaContent(doc, "og:description"); desc != "" {
		add(models.FieldDescription, desc, 0.55)
	} else {
		add(models.FieldDescription, metaNameContent(doc, "description"), 0.5)
	}

	// Facebook event markup; rare but unambiguous when present
	add(models.FieldStartDatetime, metaContent(doc, "event:start_time"), 0.65)
	add(models.FieldEndDatetime, metaContent(doc, "event:end_time"), 0.6)

	if image := normalize.CleanText(metaContent(doc, "og:image")); image != "" {
		fields = append(fields, multiField(models.FieldImageURLs, []string{image}, 0.6, StrategyMetaTag, PriorityMetaTag))
	}

	return fields
}

func metaContent(doc *Document, property string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property="%s"]`, property)).First()
	if sel.Length() == 0 {
		sel = doc.Find(fmt.Sprintf(`meta[name="%s"]`, property)).First()
	}
	return sel.AttrOr("content", "")
}

func metaNameContent(doc *Document, name string) string {
	return doc.Find(fmt.Sprintf(`meta[name="%s"]`, name)).First().AttrOr("content", "")
}

// stripSiteSuffix drops trailing "| Site Name" decorations that og and
// title tags commonly carry.
func stripSiteSuffix(title string) string {
	for _, sep := range []string{" | ", " - ", " – ", " — "} {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	return title
}
