package pipeline

import (
	"log"
	"strings"
	"time"

	"ibiza-events-aggregator/internal/extract"
	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/normalize"
)

// Mapper turns a merged partial record into a canonical event. Mapping
// is pure and deterministic; confidence values have already done their
// job during the merge and are ignored here.
//
// Malformed values (unparseable dates, prices, coordinates) leave the
// corresponding canonical field absent so the scorer can tell missing
// from present-but-poor; they never abort the mapping.
type Mapper struct {
	config Config
}

// NewMapper creates a mapper
func NewMapper(config Config) *Mapper {
	return &Mapper{config: config.normalized()}
}

// Map builds the canonical event from the record. It fails only when
// the record carries no title.
func (m *Mapper) Map(record models.PartialRecord, ctx extract.Context) (*models.CanonicalEvent, error) {
	title := normalize.CleanText(record.Value(models.FieldTitle))
	if title == "" {
		return nil, &ExtractionError{SourceURL: ctx.SourceURL, Reason: "no strategy produced a title"}
	}

	event, err := models.NewCanonicalEvent(title, ctx.SourcePlatform, ctx.SourceURL, ctx.ScrapedAt)
	if err != nil {
		return nil, err
	}

	event.Type = m.eventType(record, title)
	if status := record.Value(models.FieldStatus); models.ValidateEventStatus(status) {
		event.Status = status
	}

	event.DateTime = m.mapDateTime(record)
	event.Venue = m.mapVenue(record)
	event.Performers = m.mapPerformers(record)
	event.Ticketing = m.mapTicketing(record)

	if description := normalize.CleanText(record.Value(models.FieldDescription)); description != "" {
		event.Content = &models.Content{Description: description}
	}
	if images := record.Values(models.FieldImageURLs); len(images) > 0 {
		event.Media = &models.Media{ImageURLs: images}
	}

	m.assignIdentity(event, ctx)

	return event, nil
}

// assignIdentity derives the stable event id from the normalized
// identity tuple. Missing components use the sentinel inside the id
// helpers, so identity stays deterministic on sparse records.
func (m *Mapper) assignIdentity(event *models.CanonicalEvent, ctx extract.Context) {
	startDay := ""
	if event.DateTime != nil && event.DateTime.StartUTC != nil {
		start := *event.DateTime.StartUTC
		startDay = models.FormatStartDay(start.Year(), int(start.Month()), start.Day())
	}

	venueName := ""
	if event.Venue != nil {
		venueName = event.Venue.Name
	}

	event.EventID = models.GenerateEventID(event.Title, startDay, venueName, ctx.SourceDomain)
	event.CanonicalID = models.GenerateCanonicalID(event.Title, startDay, venueName)
}

func (m *Mapper) mapDateTime(record models.PartialRecord) *models.EventDateTime {
	rawStart := record.Value(models.FieldStartDatetime)
	rawEnd := record.Value(models.FieldEndDatetime)
	// Parsing works on cleaned text, but the display text keeps the
	// source's original string for audit.
	rawDateText := record.Value(models.FieldDateText)
	dateText := normalize.CleanText(rawDateText)

	loc := m.location()
	dt := &models.EventDateTime{
		Timezone:  m.config.DefaultTimezone,
		Recurring: record.Value(models.FieldRecurring) == "true",
	}

	if tz := record.Value(models.FieldTimezone); tz != "" {
		dt.Timezone = tz
	}

	if rawStart != "" {
		if start, err := normalize.ParseDateTime(rawStart, loc); err == nil {
			dt.StartUTC = &start
		} else {
			log.Printf("[MAP] unparseable start datetime %q: %v", rawStart, err)
		}
	}
	if dt.StartUTC == nil && dateText != "" {
		if start, err := normalize.ParseDateTime(dateText, loc); err == nil {
			dt.StartUTC = &start
		}
	}
	if rawEnd != "" {
		if end, err := normalize.ParseDateTime(rawEnd, loc); err == nil {
			dt.EndUTC = &end
		}
	}

	switch {
	case dateText != "" && normalize.HasDateLikeToken(dateText):
		dt.DisplayText = rawDateText
	case dt.StartUTC == nil && dateText != "":
		// Text with no date token only survives when nothing parsed;
		// the scorer flags it as unparseable.
		dt.DisplayText = rawDateText
	}

	if dt.StartUTC == nil && dt.EndUTC == nil && dt.DisplayText == "" && !dt.Recurring {
		return nil
	}
	return dt
}

func (m *Mapper) mapVenue(record models.PartialRecord) *models.Venue {
	name := normalize.CleanText(record.Value(models.FieldVenueName))
	if name == "" {
		return nil
	}

	venue := &models.Venue{
		VenueID: models.GenerateVenueID(name),
		Name:    name,
		Address: normalize.CleanText(record.Value(models.FieldVenueAddress)),
		Stages:  record.Values(models.FieldStages),
	}

	latRaw := record.Value(models.FieldLatitude)
	lngRaw := record.Value(models.FieldLongitude)
	if latRaw != "" && lngRaw != "" {
		lat, latErr := normalize.ParseCoordinate(latRaw)
		lng, lngErr := normalize.ParseCoordinate(lngRaw)
		if latErr == nil && lngErr == nil && normalize.ValidCoordinates(lat, lng) {
			venue.Coordinates = &models.Coordinates{Lat: lat, Lng: lng}
		} else {
			log.Printf("[MAP] dropping invalid coordinates %q,%q", latRaw, lngRaw)
		}
	}

	return venue
}

func (m *Mapper) mapPerformers(record models.PartialRecord) []models.Performer {
	names := record.Values(models.FieldPerformers)
	if len(names) == 0 {
		if solo := normalize.CleanText(record.Value(models.FieldHeadliner)); solo != "" {
			names = []string{solo}
		} else {
			return nil
		}
	}

	headliner := normalize.CleanText(record.Value(models.FieldHeadliner))

	performers := make([]models.Performer, 0, len(names))
	seen := make(map[string]bool)
	for i, raw := range names {
		name := normalize.CleanText(raw)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true

		role := models.RoleSupport
		switch {
		case headliner != "" && strings.EqualFold(name, headliner):
			role = models.RoleHeadliner
		case headliner == "" && i == 0:
			// First listed act headlines by convention when the source
			// does not say otherwise.
			role = models.RoleHeadliner
		}

		performers = append(performers, models.Performer{
			ActID: models.GenerateActID(name),
			Name:  name,
			Role:  role,
		})
	}

	if len(performers) == 0 {
		return nil
	}
	return performers
}

func (m *Mapper) mapTicketing(record models.PartialRecord) *models.Ticketing {
	priceText := record.Value(models.FieldPriceText)
	isFree := record.Value(models.FieldIsFree) == "true"
	purchaseURL := normalize.CleanText(record.Value(models.FieldPurchaseURL))
	currency := strings.ToUpper(normalize.CleanText(record.Value(models.FieldCurrency)))

	if priceText == "" && !isFree && purchaseURL == "" && currency == "" {
		return nil
	}

	ticketing := &models.Ticketing{
		IsFree:      isFree,
		Currency:    currency,
		PurchaseURL: purchaseURL,
	}

	if priceText != "" {
		if info, ok := normalize.ParsePrice(priceText); ok {
			if info.IsFree {
				ticketing.IsFree = true
			} else {
				min := info.Min
				ticketing.MinPrice = &min
				if ticketing.Currency == "" {
					ticketing.Currency = info.Currency
				}
				ticketing.Tiers = m.buildTiers(info, ticketing.Currency)
			}
		} else {
			log.Printf("[MAP] unparseable price text %q", priceText)
		}
	}

	return ticketing
}

// buildTiers keeps the cheapest tiers up to the configured cap. Noisy
// sources list every table package; the cap keeps records bounded.
func (m *Mapper) buildTiers(info normalize.PriceInfo, currency string) []models.TicketTier {
	amounts := info.Amounts
	if len(amounts) == 0 {
		return nil
	}
	if len(amounts) > m.config.MaxTicketTiers {
		amounts = amounts[:m.config.MaxTicketTiers]
	}

	tiers := make([]models.TicketTier, 0, len(amounts))
	for _, amount := range amounts {
		tiers = append(tiers, models.TicketTier{Price: amount, Currency: currency})
	}
	return tiers
}

// eventType infers the canonical type from the explicit field when the
// source set one, falling back to title keywords.
func (m *Mapper) eventType(record models.PartialRecord, title string) string {
	if explicit := record.Value(models.FieldEventType); models.ValidateEventType(explicit) {
		return explicit
	}

	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "festival"):
		return models.TypeFestival
	case strings.Contains(lower, "pool party"), strings.Contains(lower, "day party"), strings.Contains(lower, "beach party"):
		return models.TypeDayParty
	case strings.Contains(lower, "concert"), strings.Contains(lower, "live"):
		return models.TypeConcert
	case strings.Contains(lower, "party"), strings.Contains(lower, "night"), strings.Contains(lower, "club"):
		return models.TypeClubNight
	}
	return models.TypeEvent
}

func (m *Mapper) location() *time.Location {
	if loc, err := time.LoadLocation(m.config.DefaultTimezone); err == nil {
		return loc
	}
	return normalize.DefaultLocation()
}
