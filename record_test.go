package adcrawl_test

import (
	"testing"

	"github.com/fwojciec/adcrawl"
	"github.com/stretchr/testify/assert"
)

func TestNewRecord(t *testing.T) {
	t.Parallel()

	rec := adcrawl.NewRecord("https://example.com/v-cars/1")

	row := rec.Row()
	assert.Len(t, row, 15)
	assert.Equal(t, "https://example.com/v-cars/1", rec.Get(adcrawl.FieldLink))
	for _, f := range adcrawl.Fields() {
		if f == adcrawl.FieldLink {
			continue
		}
		assert.Equal(t, adcrawl.Sentinel, rec.Get(f), f.String())
	}
}

func TestHeader(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"Duration Posted", "Listing Link", "Name", "Price", "Location",
		"Seller Name", "Phone", "Seats", "Kilometres", "Body Style",
		"Doors", "Transmission", "Model", "Extra Info", "Fuel",
	}, adcrawl.Header())
}

func TestHeader_ReturnsCopy(t *testing.T) {
	t.Parallel()

	h := adcrawl.Header()
	h[0] = "Posted"

	assert.Equal(t, "Duration Posted", adcrawl.Header()[0])
	assert.Equal(t, "Duration Posted", adcrawl.FieldPosted.String())
}

func TestRecord_Set(t *testing.T) {
	t.Parallel()

	t.Run("stores value", func(t *testing.T) {
		t.Parallel()
		rec := adcrawl.NewRecord("l")
		rec.Set(adcrawl.FieldPrice, "$12,500.00")
		assert.Equal(t, "$12,500.00", rec.Get(adcrawl.FieldPrice))
	})

	t.Run("blank keeps sentinel", func(t *testing.T) {
		t.Parallel()
		rec := adcrawl.NewRecord("l")
		rec.Set(adcrawl.FieldSeats, "   ")
		assert.Equal(t, adcrawl.Sentinel, rec.Get(adcrawl.FieldSeats))
	})

	t.Run("clone is independent", func(t *testing.T) {
		t.Parallel()
		rec := adcrawl.NewRecord("l")
		c := rec.Clone()
		rec.Set(adcrawl.FieldName, "Civic")
		assert.Equal(t, adcrawl.Sentinel, c.Get(adcrawl.FieldName))
	})
}

func TestSpreadsheetSafe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, " +1-416-555-0100", adcrawl.SpreadsheetSafe("+1-416-555-0100"))
	assert.Equal(t, " -5", adcrawl.SpreadsheetSafe("  -5 "))
	assert.Equal(t, "$9,000", adcrawl.SpreadsheetSafe(" $9,000\n"))
	assert.Empty(t, adcrawl.SpreadsheetSafe("  "))
}
