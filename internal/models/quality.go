package models

// Quality dimension names used as field_scores keys
const (
	DimensionTitle     = "title"
	DimensionVenue     = "venue"
	DimensionDatetime  = "datetime"
	DimensionLineup    = "lineup"
	DimensionTicketing = "ticketing"
)

// Quality level constants
const (
	LevelExcellent = "excellent"
	LevelGood      = "good"
	LevelFair      = "fair"
	LevelPoor      = "poor"
	LevelVeryPoor  = "very_poor"
)

// Named validation issues recorded as quality flags
const (
	IssueMissingTitle      = "missing_title"
	IssueTitleTooShort     = "title_too_short"
	IssueMissingDatetime   = "missing_datetime"
	IssueUnparseableDate   = "unparseable_date"
	IssueDateTooFarFuture  = "date_too_far_future"
	IssueDateInPast        = "date_in_past"
	IssueMissingLocation   = "missing_location"
	IssueMissingAddress    = "missing_address"
	IssueCoordsOutOfBounds = "coordinates_out_of_bounds"
	IssueMissingLineup     = "missing_lineup"
	IssueNoHeadliner       = "no_headliner"
	IssueMissingTicketInfo = "missing_ticket_info"
	IssueUnusualPriceRange = "unusual_price_range"
	IssueMissingCurrency   = "missing_currency"
	IssueUnparseablePrice  = "unparseable_price"
	IssueLowQualityResult  = "low_quality_result"
)

// QualityFlag names a validation issue on a specific field
type QualityFlag struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// QualityReport is the scored assessment of a canonical event.
// FieldScores holds only the dimensions actually present on the event;
// OverallScore is their weighted average renormalized over the weights
// of those present dimensions.
type QualityReport struct {
	OverallScore float64            `json:"overall_score"`
	FieldScores  map[string]float64 `json:"field_scores"`
	Flags        []QualityFlag      `json:"flags"`
	Level        string             `json:"level"`
}

// HasFlag reports whether the report carries a given issue
func (qr *QualityReport) HasFlag(issue string) bool {
	for _, flag := range qr.Flags {
		if flag.Issue == issue {
			return true
		}
	}
	return false
}

// FlagsForField returns all issues recorded against one field
func (qr *QualityReport) FlagsForField(field string) []QualityFlag {
	var flags []QualityFlag
	for _, flag := range qr.Flags {
		if flag.Field == field {
			flags = append(flags, flag)
		}
	}
	return flags
}
