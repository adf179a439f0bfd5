package models

// Canonical field keys flowing from the extraction strategies through
// the partial record into the schema mapper.
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldEventType     = "event_type"
	FieldStatus        = "status"
	FieldStartDatetime = "start_datetime"
	FieldEndDatetime   = "end_datetime"
	FieldDateText      = "date_text"
	FieldTimezone      = "timezone"
	FieldRecurring     = "recurring"
	FieldVenueName     = "venue_name"
	FieldVenueAddress  = "venue_address"
	FieldLatitude      = "latitude"
	FieldLongitude     = "longitude"
	FieldStages        = "stages"
	FieldPerformers    = "performers"
	FieldHeadliner     = "headliner"
	FieldPriceText     = "price_text"
	FieldCurrency      = "currency"
	FieldIsFree        = "is_free"
	FieldPurchaseURL   = "purchase_url"
	FieldImageURLs     = "image_urls"
)

// RawField is the atomic unit produced by an extraction strategy: one
// field value tagged with the strategy's self-reported confidence.
// Multi-valued fields (performers, stages, image URLs) carry Values;
// everything else carries Value.
type RawField struct {
	Name       string   `json:"field_name"`
	Value      string   `json:"value,omitempty"`
	Values     []string `json:"values,omitempty"`
	Confidence float64  `json:"confidence"`
	Strategy   string   `json:"strategy_name"`
	Priority   int      `json:"strategy_priority"`
}

// PartialRecord accumulates merged extraction output per field. It is
// created fresh per extraction attempt and discarded once mapped.
type PartialRecord map[string]RawField

// NewPartialRecord creates an empty partial record
func NewPartialRecord() PartialRecord {
	return make(PartialRecord)
}

// Merge applies the confidence-aware merge rule: a field already set
// by a strategy with confidence c1 is never overwritten by a later
// strategy with confidence c2 <= c1 (ties keep the earlier, higher
// priority strategy). Returns true when the field was stored.
func (pr PartialRecord) Merge(field RawField) bool {
	if field.Name == "" {
		return false
	}
	if field.Value == "" && len(field.Values) == 0 {
		return false
	}

	existing, ok := pr[field.Name]
	if ok && field.Confidence <= existing.Confidence {
		return false
	}

	pr[field.Name] = field
	return true
}

// MergeAll merges a batch of fields and returns how many were stored
func (pr PartialRecord) MergeAll(fields []RawField) int {
	stored := 0
	for _, field := range fields {
		if pr.Merge(field) {
			stored++
		}
	}
	return stored
}

// Has reports whether a field is present
func (pr PartialRecord) Has(name string) bool {
	_, ok := pr[name]
	return ok
}

// Value returns the scalar value for a field, or "" when absent
func (pr PartialRecord) Value(name string) string {
	field, ok := pr[name]
	if !ok {
		return ""
	}
	return field.Value
}

// Values returns the multi-value list for a field, or nil when absent
func (pr PartialRecord) Values(name string) []string {
	field, ok := pr[name]
	if !ok {
		return nil
	}
	return field.Values
}
