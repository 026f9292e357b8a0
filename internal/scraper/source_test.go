package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRawListingNormalize(t *testing.T) {
	scrapedAt := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)

	raw := RawListing{
		LotNumber: " 4821 ",
		URL:       "https://auctions.example/lot/4821",
		Make:      "BMW",
		Model:     "3 Series",
		Year:      "2019",
		Price:     "£18,500",
		Mileage:   "42,000 miles",
		Condition: "<p>Good condition<script>alert(1)</script></p>",
	}

	listing, ok := raw.Normalize("copart-uk", scrapedAt)
	require.True(t, ok)
	require.Equal(t, "4821", listing.LotNumber)
	require.Equal(t, 2019, listing.Year)
	require.InDelta(t, 18500.0, listing.PriceGBP, 0.001)
	require.NotNil(t, listing.Mileage)
	require.Equal(t, 42000, *listing.Mileage)
	require.Equal(t, "Good condition", listing.Condition)
	require.Equal(t, scrapedAt, listing.ScrapedAt)
}

func TestRawListingNormalizeRejectsUnparseable(t *testing.T) {
	scrapedAt := time.Now()

	_, ok := RawListing{LotNumber: "1", Make: "Ford", Year: "unknown", Price: "100"}.Normalize("site", scrapedAt)
	require.False(t, ok)

	_, ok = RawListing{LotNumber: "", Make: "Ford", Year: "2020", Price: "100"}.Normalize("site", scrapedAt)
	require.False(t, ok)

	_, ok = RawListing{LotNumber: "2", Make: "Ford", Year: "2020", Price: "POA"}.Normalize("site", scrapedAt)
	require.False(t, ok)
}

func TestRawListingNormalizeUnknownMileage(t *testing.T) {
	listing, ok := RawListing{
		LotNumber: "9",
		Make:      "Audi",
		Model:     "A3",
		Year:      "2021",
		Price:     "12000",
		Mileage:   "TBC",
	}.Normalize("site", time.Now())
	require.True(t, ok)
	require.Nil(t, listing.Mileage)
}

func TestStaticSourceDedupes(t *testing.T) {
	source := NewStaticSource("fixture", []RawListing{
		{LotNumber: "1", Make: "BMW", Model: "X5", Year: "2020", Price: "30000"},
		{LotNumber: "1", Make: "BMW", Model: "X5", Year: "2020", Price: "30000"},
		{LotNumber: "2", Make: "Audi", Model: "Q5", Year: "2021", Price: "28000"},
	})

	listings, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
}
