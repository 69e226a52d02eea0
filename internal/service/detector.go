package service

import (
	"context"
	"sort"
	"strings"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"

	"go.uber.org/zap"
)

// knownService maps a merchant-name fragment to a curated display entry.
type knownService struct {
	name     string
	category string
	logo     string
}

// knownServices is the curated merchant catalog; matched by substring
// against the normalized merchant name.
var knownServices = map[string]knownService{
	"netflix": {"Netflix", "Entertainment", "🎬"},
	"spotify": {"Spotify", "Music", "🎵"},
	"adobe":   {"Adobe", "Software", "🎨"},
	"disney":  {"Disney+", "Entertainment", "🏰"},
	"hulu":    {"Hulu", "Entertainment", "📺"},
	"github":  {"GitHub", "Development", "💻"},
	"notion":  {"Notion", "Productivity", "📝"},
	"dropbox": {"Dropbox", "Storage", "📁"},
}

// Detector finds recurring subscriptions in bank statement lines. The
// output candidates feed the subscription import.
type Detector struct {
	logger *zap.Logger
}

// NewDetector creates a detector.
func NewDetector(logger *zap.Logger) *Detector {
	return &Detector{logger: logger}
}

// Detect groups transactions by merchant and flags merchants that recur.
// Two or more charges make a candidate; three or more look monthly.
// Confidence grows with the number of charges, capped at 0.95.
func (d *Detector) Detect(ctx context.Context, txs []domain.BankTransaction) []domain.ImportCandidate {
	_, span := tracer.Start(ctx, "Detector.Detect")
	defer span.End()

	groups := make(map[string][]domain.BankTransaction)
	for _, tx := range txs {
		merchant := normalizeMerchant(tx)
		groups[merchant] = append(groups[merchant], tx)
	}

	candidates := make([]domain.ImportCandidate, 0)
	for merchant, group := range groups {
		if merchant == "" || len(group) < 2 {
			continue
		}

		amount := group[0].Amount
		if amount < 0 {
			amount = -amount
		}

		frequency := "irregular"
		if len(group) >= 3 {
			frequency = "monthly"
		}

		candidate := domain.ImportCandidate{
			Name:             merchant,
			Merchant:         merchant,
			Amount:           round2(amount),
			Category:         "Other",
			Logo:             "📊",
			Frequency:        frequency,
			Confidence:       confidence(len(group)),
			TransactionCount: len(group),
		}
		if known, ok := matchKnownService(merchant); ok {
			candidate.Name = known.name
			candidate.Category = known.category
			candidate.Logo = known.logo
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Name < candidates[j].Name
	})

	d.logger.Debug("subscription detection finished",
		zap.Int("transactions", len(txs)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates
}

func normalizeMerchant(tx domain.BankTransaction) string {
	merchant := tx.Merchant
	if merchant == "" {
		merchant = tx.Description
	}
	return strings.ToLower(strings.TrimSpace(merchant))
}

func matchKnownService(merchant string) (knownService, bool) {
	for fragment, svc := range knownServices {
		if strings.Contains(merchant, fragment) {
			return svc, true
		}
	}
	return knownService{}, false
}

func confidence(chargeCount int) float64 {
	c := 0.5 + float64(chargeCount)*0.1
	if c > 0.95 {
		c = 0.95
	}
	return c
}
