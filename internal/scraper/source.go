package scraper

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"

	"github.com/lotscout/lotscout-go-api/internal/models"
)

// Source fetches raw listings from one auction site and normalises them into
// VehicleListing records. Implementations own their transport (HTTP, headless
// browser, fixtures); the pipeline only sees the normalised output.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.VehicleListing, error)
}

// RawListing is the unnormalised record a source extracts from a page or API
// payload. String fields may carry markup or formatted numbers.
type RawListing struct {
	LotNumber   string
	URL         string
	Make        string
	Model       string
	Year        string
	Price       string
	Mileage     string
	Condition   string
	ImageURLs   []string
	AuctionDate *time.Time
}

var conditionSanitizer = bluemonday.StrictPolicy()

// Normalize converts a raw listing into the common VehicleListing shape.
// Condition notes are stripped of any markup the auction page carried.
// Returns false when mandatory fields cannot be parsed.
func (r RawListing) Normalize(sourceSite string, scrapedAt time.Time) (models.VehicleListing, bool) {
	lot := strings.TrimSpace(r.LotNumber)
	make := strings.TrimSpace(r.Make)
	if lot == "" || make == "" {
		return models.VehicleListing{}, false
	}

	year, err := strconv.Atoi(strings.TrimSpace(r.Year))
	if err != nil || year < 1900 {
		return models.VehicleListing{}, false
	}

	price, err := parseMoney(r.Price)
	if err != nil || price <= 0 {
		return models.VehicleListing{}, false
	}

	listing := models.VehicleListing{
		SourceSite:  sourceSite,
		LotNumber:   lot,
		URL:         strings.TrimSpace(r.URL),
		Make:        make,
		Model:       strings.TrimSpace(r.Model),
		Year:        year,
		PriceGBP:    price,
		Condition:   strings.TrimSpace(conditionSanitizer.Sanitize(r.Condition)),
		ImageURLs:   datatypes.NewJSONSlice(r.ImageURLs),
		AuctionDate: r.AuctionDate,
		ScrapedAt:   scrapedAt,
	}

	if mileage, err := parseCount(r.Mileage); err == nil {
		listing.Mileage = &mileage
	}

	return listing, true
}

func parseMoney(value string) (float64, error) {
	cleaned := strings.NewReplacer("£", "", "$", "", ",", "", " ", "").Replace(strings.TrimSpace(value))
	return strconv.ParseFloat(cleaned, 64)
}

func parseCount(value string) (int, error) {
	cleaned := strings.NewReplacer(",", "", " ", "", "miles", "", "mi", "").Replace(strings.ToLower(strings.TrimSpace(value)))
	return strconv.Atoi(cleaned)
}

// Dedupe drops listings already seen in this batch, keyed by source site and
// lot number. Sources occasionally repeat lots across result pages.
func Dedupe(listings []models.VehicleListing) []models.VehicleListing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]models.VehicleListing, 0, len(listings))
	for _, listing := range listings {
		key := listing.SourceSite + "|" + listing.LotNumber
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, listing)
	}
	return out
}

// StaticSource serves a fixed set of raw listings. Used in development and
// tests where no auction site is reachable.
type StaticSource struct {
	SiteName string
	Raw      []RawListing
	now      func() time.Time
}

// NewStaticSource builds a fixture-backed source.
func NewStaticSource(siteName string, raw []RawListing) *StaticSource {
	return &StaticSource{SiteName: siteName, Raw: raw, now: time.Now}
}

// Name implements Source.
func (s *StaticSource) Name() string { return s.SiteName }

// Fetch implements Source.
func (s *StaticSource) Fetch(_ context.Context) ([]models.VehicleListing, error) {
	scrapedAt := s.now()
	listings := make([]models.VehicleListing, 0, len(s.Raw))
	for _, raw := range s.Raw {
		if listing, ok := raw.Normalize(s.SiteName, scrapedAt); ok {
			listings = append(listings, listing)
		}
	}
	return Dedupe(listings), nil
}
