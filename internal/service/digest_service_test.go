package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/pkg/mailer"
)

type stubMailer struct {
	sent []mailer.Email
	err  error
}

func (m *stubMailer) Send(_ context.Context, email mailer.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func sampleMatches(n int) []ScoredMatch {
	matches := make([]ScoredMatch, 0, n)
	for i := 0; i < n; i++ {
		matches = append(matches, ScoredMatch{
			Listing: models.VehicleListing{
				Make:     "BMW",
				Model:    "320d",
				Year:     2020,
				PriceGBP: 14000,
				URL:      "https://auctions.example.com/lot/123",
			},
			Score:   90 - i,
			Reasons: []string{"Low risk", "No reported faults"},
		})
	}
	return matches
}

func TestSendDigestRendersTopMatches(t *testing.T) {
	mail := &stubMailer{}
	svc := NewDigestService(mail, 10, zerolog.Nop())

	dealer := models.Dealer{ID: 1, Name: "Kingsway Motors", Email: "buyer@kingsway.example"}
	err := svc.SendDigest(context.Background(), dealer, sampleMatches(3))
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)

	email := mail.sent[0]
	require.Equal(t, dealer.Email, email.To)
	require.Equal(t, "Your LotScout digest: 3 matched auction vehicles", email.Subject)
	require.Contains(t, email.HTMLBody, "Kingsway Motors")
	require.Contains(t, email.HTMLBody, "2020 BMW 320d")
	require.Contains(t, email.HTMLBody, "Low risk")
	require.Contains(t, email.HTMLBody, "https://auctions.example.com/lot/123")
}

func TestSendDigestCapsAtDigestSize(t *testing.T) {
	mail := &stubMailer{}
	svc := NewDigestService(mail, 5, zerolog.Nop())

	dealer := models.Dealer{ID: 1, Name: "Kingsway Motors", Email: "buyer@kingsway.example"}
	err := svc.SendDigest(context.Background(), dealer, sampleMatches(12))
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)
	require.Contains(t, mail.sent[0].Subject, "5 matched")
}

func TestSendDigestSkipsWhenEmpty(t *testing.T) {
	mail := &stubMailer{}
	svc := NewDigestService(mail, 10, zerolog.Nop())

	err := svc.SendDigest(context.Background(), models.Dealer{ID: 1}, nil)
	require.NoError(t, err)
	require.Empty(t, mail.sent)
}

func TestSendDigestPropagatesMailerError(t *testing.T) {
	mail := &stubMailer{err: errors.New("ses throttled")}
	svc := NewDigestService(mail, 10, zerolog.Nop())

	err := svc.SendDigest(context.Background(), models.Dealer{ID: 1, Email: "x@example.com"}, sampleMatches(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "ses throttled")
}
