package service

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/observability"
	"github.com/lotscout/lotscout-go-api/pkg/mailer"
)

// DigestService renders and emails the per-dealer match digest.
type DigestService interface {
	SendDigest(ctx context.Context, dealer models.Dealer, matches []ScoredMatch) error
}

type digestService struct {
	mail       mailer.Mailer
	logger     zerolog.Logger
	digestSize int
}

// NewDigestService constructs the digest sender. digestSize caps how many
// matches one email carries.
func NewDigestService(mail mailer.Mailer, digestSize int, logger zerolog.Logger) DigestService {
	if digestSize <= 0 {
		digestSize = 10
	}

	return &digestService{
		mail:       mail,
		logger:     logger.With().Str("component", "digest_service").Logger(),
		digestSize: digestSize,
	}
}

// SendDigest emails the dealer their top matches. Empty match sets send
// nothing; that is not an error.
func (s *digestService) SendDigest(ctx context.Context, dealer models.Dealer, matches []ScoredMatch) error {
	if len(matches) == 0 {
		s.logger.Debug().Uint("dealer_id", dealer.ID).Msg("no matches, skipping digest")
		return nil
	}
	if s.mail == nil {
		s.logger.Debug().Uint("dealer_id", dealer.ID).Msg("mailer not configured, skipping digest")
		return nil
	}

	top := matches
	if len(top) > s.digestSize {
		top = top[:s.digestSize]
	}

	body, err := renderDigestEmail(dealer, top)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	subject := fmt.Sprintf("Your LotScout digest: %d matched auction vehicles", len(top))
	if err := s.mail.Send(ctx, mailer.Email{To: dealer.Email, Subject: subject, HTMLBody: body}); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	observability.EmailsSent().WithLabelValues("digest").Inc()
	s.logger.Info().Uint("dealer_id", dealer.ID).Int("matches", len(top)).Msg("digest sent")
	return nil
}

var digestTemplate = template.Must(template.New("digest").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #1a1a1a;">
<h2>Hello {{.DealerName}},</h2>
<p>We matched {{len .Matches}} auction vehicles to your buying preferences today.</p>
{{range .Matches}}
<div style="border: 1px solid #ddd; border-radius: 6px; padding: 12px; margin-bottom: 10px;">
  <h3 style="margin: 0 0 4px 0;">{{.Year}} {{.Make}} {{.Model}} &mdash; &pound;{{printf "%.0f" .PriceGBP}}</h3>
  <p style="margin: 0 0 4px 0;"><strong>Match score: {{.Score}}/100</strong></p>
  <p style="margin: 0; color: #555;">{{.Reasons}}</p>
  {{if .URL}}<p style="margin: 4px 0 0 0;"><a href="{{.URL}}">View lot</a></p>{{end}}
</div>
{{end}}
<p style="color: #888; font-size: 12px;">You receive this digest because auction matching is enabled for your account.</p>
</body>
</html>`))

type digestEntry struct {
	Year     int
	Make     string
	Model    string
	PriceGBP float64
	Score    int
	Reasons  string
	URL      string
}

type digestData struct {
	DealerName string
	Matches    []digestEntry
}

func renderDigestEmail(dealer models.Dealer, matches []ScoredMatch) (string, error) {
	data := digestData{DealerName: dealer.Name}
	for _, match := range matches {
		data.Matches = append(data.Matches, digestEntry{
			Year:     match.Listing.Year,
			Make:     match.Listing.Make,
			Model:    match.Listing.Model,
			PriceGBP: match.Listing.PriceGBP,
			Score:    match.Score,
			Reasons:  strings.Join(match.Reasons, " · "),
			URL:      match.Listing.URL,
		})
	}

	var builder strings.Builder
	if err := digestTemplate.Execute(&builder, data); err != nil {
		return "", err
	}
	return builder.String(), nil
}

var hotDealTemplate = template.Must(template.New("hotdeal").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #1a1a1a;">
<h2 style="color: #c0392b;">{{.Urgency}} hot deal</h2>
<h3>{{.Year}} {{.Make}} {{.Model}} &mdash; &pound;{{printf "%.0f" .PriceGBP}}</h3>
<p><strong>Deal score: {{.Score}}/100</strong></p>
<p style="color: #555;">{{.Reasons}}</p>
{{if .URL}}<p><a href="{{.URL}}">View lot now</a></p>{{end}}
<p style="color: #888; font-size: 12px;">Hot deals move fast; this lot cleared every alerting threshold.</p>
</body>
</html>`))

type hotDealEmailData struct {
	Urgency  string
	Year     int
	Make     string
	Model    string
	PriceGBP float64
	Score    int
	Reasons  string
	URL      string
}

func renderHotDealEmail(listing models.VehicleListing, result HotDealResult) string {
	data := hotDealEmailData{
		Urgency:  result.Urgency,
		Year:     listing.Year,
		Make:     listing.Make,
		Model:    listing.Model,
		PriceGBP: listing.PriceGBP,
		Score:    result.Score,
		Reasons:  strings.Join(result.Reasons, " · "),
		URL:      listing.URL,
	}

	var builder strings.Builder
	if err := hotDealTemplate.Execute(&builder, data); err != nil {
		return fmt.Sprintf("<p>Hot deal: %d %s %s</p>", listing.Year, listing.Make, listing.Model)
	}
	return builder.String()
}
