package booking

import (
	"testing"

	"bookwell/models"

	"github.com/stretchr/testify/assert"
)

func TestHourlyPricing(t *testing.T) {
	p := HourlyPricing{Rate: 40, OffsiteSurcharge: 0.25, CurrencyCode: "EUR"}

	assert.Equal(t, 40.0, p.Quote(60, models.LocationOnSite))
	assert.Equal(t, 20.0, p.Quote(30, models.LocationOnSite))
	assert.Equal(t, 50.0, p.Quote(60, models.LocationOffSite))
	assert.Equal(t, 13.33, p.Quote(20, models.LocationOnSite))
	assert.Equal(t, "EUR", p.Currency())
	assert.Equal(t, "USD", HourlyPricing{Rate: 10}.Currency())
}
