package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// PriceInfo is the parsed form of a scraped price fragment
type PriceInfo struct {
	Amounts  []float64
	Min      float64
	Currency string
	IsFree   bool
}

var (
	amountRe = regexp.MustCompile(`\d+(?:[.,]\d{1,2})?`)

	freeMarkers = []string{
		"free", "gratis", "entrada libre", "free entry", "no cover", "complimentary",
	}

	currencySymbols = map[string]string{
		"€": "EUR",
		"£": "GBP",
		"$": "USD",
	}

	currencyCodes = []string{"EUR", "GBP", "USD"}
)

// ParsePrice extracts the price amounts and currency from a scraped
// fragment like "From €60.00", "60,50 € - 80 €" or "Entrada libre".
// The boolean result is false when the fragment carries no usable
// price signal at all.
func ParsePrice(s string) (PriceInfo, bool) {
	cleaned := CleanText(s)
	if cleaned == "" {
		return PriceInfo{}, false
	}

	lower := strings.ToLower(cleaned)
	for _, marker := range freeMarkers {
		if strings.Contains(lower, marker) {
			return PriceInfo{IsFree: true, Currency: detectCurrency(cleaned)}, true
		}
	}

	currency := detectCurrency(cleaned)

	var amounts []float64
	for _, match := range amountRe.FindAllString(cleaned, -1) {
		// European price fragments use the comma as decimal separator
		normalized := strings.ReplaceAll(match, ",", ".")
		amount, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			continue
		}
		// Four-digit "amounts" in event pages are almost always years
		if amount >= 1900 && amount <= 2100 && !strings.Contains(match, ".") && !strings.Contains(match, ",") && len(match) == 4 && currency == "" {
			continue
		}
		amounts = append(amounts, amount)
	}

	if len(amounts) == 0 {
		return PriceInfo{}, false
	}

	min := amounts[0]
	for _, a := range amounts[1:] {
		if a < min {
			min = a
		}
	}

	return PriceInfo{
		Amounts:  amounts,
		Min:      min,
		Currency: currency,
	}, true
}

func detectCurrency(s string) string {
	for symbol, code := range currencySymbols {
		if strings.Contains(s, symbol) {
			return code
		}
	}

	upper := strings.ToUpper(s)
	for _, code := range currencyCodes {
		if strings.Contains(upper, code) {
			return code
		}
	}

	return ""
}
