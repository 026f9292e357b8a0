package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/models"
)

// AuctionPageConfig configures the headless-browser auction source.
type AuctionPageConfig struct {
	SiteName string
	StartURL string
	Pages    int
	Timeout  time.Duration
}

// AuctionPageSource scrapes listing cards from a paginated auction site with
// a headless browser. Sites render their lot grids client-side, so plain
// HTTP fetches return empty shells.
type AuctionPageSource struct {
	cfg    AuctionPageConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewAuctionPageSource builds a browser-backed source.
func NewAuctionPageSource(cfg AuctionPageConfig, logger zerolog.Logger) *AuctionPageSource {
	if cfg.Pages <= 0 {
		cfg.Pages = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}

	return &AuctionPageSource{
		cfg:    cfg,
		logger: logger.With().Str("component", "auction_page_source").Str("site", cfg.SiteName).Logger(),
		now:    time.Now,
	}
}

// Name implements Source.
func (s *AuctionPageSource) Name() string { return s.cfg.SiteName }

// Fetch implements Source. Page failures after the first are logged and
// skipped so one bad page does not lose the whole run.
func (s *AuctionPageSource) Fetch(ctx context.Context) ([]models.VehicleListing, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	scrapedAt := s.now()
	var all []models.VehicleListing

	for page := 1; page <= s.cfg.Pages; page++ {
		raw, err := s.scrapePage(browserCtx, page)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("scrape %s page 1: %w", s.cfg.SiteName, err)
			}
			s.logger.Warn().Err(err).Int("page", page).Msg("page scrape failed, continuing")
			continue
		}

		for _, r := range raw {
			if listing, ok := r.Normalize(s.cfg.SiteName, scrapedAt); ok {
				all = append(all, listing)
			}
		}
	}

	deduped := Dedupe(all)
	s.logger.Info().Int("listings", len(deduped)).Msg("scrape complete")
	return deduped, nil
}

type extractedLot struct {
	Lot       string   `json:"lot"`
	URL       string   `json:"url"`
	Make      string   `json:"make"`
	Model     string   `json:"model"`
	Year      string   `json:"year"`
	Price     string   `json:"price"`
	Mileage   string   `json:"mileage"`
	Condition string   `json:"condition"`
	Images    []string `json:"images"`
}

func (s *AuctionPageSource) scrapePage(ctx context.Context, page int) ([]RawListing, error) {
	pageCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	url := s.cfg.StartURL
	if page > 1 {
		url = fmt.Sprintf("%s?page=%d", s.cfg.StartURL, page)
	}

	var extracted []extractedLot
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`[data-lot-id]`, chromedp.ByQuery),
		chromedp.Evaluate(lotExtractionJS, &extracted),
	)
	if err != nil {
		return nil, err
	}

	raw := make([]RawListing, 0, len(extracted))
	for _, lot := range extracted {
		raw = append(raw, RawListing{
			LotNumber: lot.Lot,
			URL:       lot.URL,
			Make:      lot.Make,
			Model:     lot.Model,
			Year:      lot.Year,
			Price:     lot.Price,
			Mileage:   lot.Mileage,
			Condition: lot.Condition,
			ImageURLs: lot.Images,
		})
	}
	return raw, nil
}

const lotExtractionJS = `
Array.from(document.querySelectorAll('[data-lot-id]')).map(card => ({
  lot: card.getAttribute('data-lot-id') || '',
  url: (card.querySelector('a') || {}).href || '',
  make: (card.querySelector('[data-field="make"]') || {}).textContent || '',
  model: (card.querySelector('[data-field="model"]') || {}).textContent || '',
  year: (card.querySelector('[data-field="year"]') || {}).textContent || '',
  price: (card.querySelector('[data-field="price"]') || {}).textContent || '',
  mileage: (card.querySelector('[data-field="mileage"]') || {}).textContent || '',
  condition: (card.querySelector('[data-field="condition"]') || {}).innerHTML || '',
  images: Array.from(card.querySelectorAll('img')).map(img => img.src)
}))
`
