package pipeline

import "fmt"

// ExtractionError is the only fatal pipeline error: no strategy could
// produce a usable title for the document, so there is nothing to key
// a record on. Every other anomaly degrades into a quality flag.
type ExtractionError struct {
	SourceURL string
	Reason    string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %s", e.SourceURL, e.Reason)
}
