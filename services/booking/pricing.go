package booking

import (
	"math"

	"bookwell/models"
)

// PricingPolicy quotes the amount owed for a booking at creation time.
type PricingPolicy interface {
	Quote(durationMinutes int, location models.ServiceLocation) float64
	Currency() string
}

// HourlyPricing charges Rate per hour, plus OffsiteSurcharge (a fraction of the
// base) when the provider travels to the client.
type HourlyPricing struct {
	Rate             float64
	OffsiteSurcharge float64
	CurrencyCode     string
}

func (p HourlyPricing) Quote(durationMinutes int, location models.ServiceLocation) float64 {
	amount := p.Rate * float64(durationMinutes) / 60
	if location == models.LocationOffSite {
		amount *= 1 + p.OffsiteSurcharge
	}
	return math.Round(amount*100) / 100
}

func (p HourlyPricing) Currency() string {
	if p.CurrencyCode == "" {
		return "USD"
	}
	return p.CurrencyCode
}
