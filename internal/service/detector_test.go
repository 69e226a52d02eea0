package service_test

import (
	"context"
	"testing"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/service"

	"go.uber.org/zap"
)

func TestDetect_RecurringMerchants(t *testing.T) {
	det := service.NewDetector(zap.NewNop())

	candidates := det.Detect(context.Background(), []domain.BankTransaction{
		{Merchant: "NETFLIX.COM", Amount: -15.99, Date: "2025-05-15"},
		{Merchant: "NETFLIX.COM", Amount: -15.99, Date: "2025-06-15"},
		{Merchant: "NETFLIX.COM", Amount: -15.99, Date: "2025-07-15"},
		{Merchant: "Spotify AB", Amount: -9.99, Date: "2025-06-01"},
		{Merchant: "Spotify AB", Amount: -9.99, Date: "2025-07-01"},
		{Merchant: "Corner Cafe", Amount: -4.50, Date: "2025-07-03"},
	})

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	// Three charges beat two on confidence, so Netflix sorts first.
	netflix := candidates[0]
	if netflix.Name != "Netflix" {
		t.Fatalf("expected Netflix first, got %s", netflix.Name)
	}
	if netflix.Frequency != "monthly" {
		t.Errorf("expected monthly for 3 charges, got %s", netflix.Frequency)
	}
	if netflix.Confidence != 0.8 {
		t.Errorf("expected confidence 0.8, got %.2f", netflix.Confidence)
	}
	if netflix.Amount != 15.99 {
		t.Errorf("expected positive amount 15.99, got %.2f", netflix.Amount)
	}
	if netflix.Category != "Entertainment" {
		t.Errorf("expected curated category, got %s", netflix.Category)
	}

	spotify := candidates[1]
	if spotify.Name != "Spotify" {
		t.Fatalf("expected Spotify second, got %s", spotify.Name)
	}
	if spotify.Frequency != "irregular" {
		t.Errorf("expected irregular for 2 charges, got %s", spotify.Frequency)
	}
	if spotify.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %.2f", spotify.Confidence)
	}
}

func TestDetect_SingleChargeIgnored(t *testing.T) {
	det := service.NewDetector(zap.NewNop())

	candidates := det.Detect(context.Background(), []domain.BankTransaction{
		{Merchant: "One-off Store", Amount: -20},
	})
	if len(candidates) != 0 {
		t.Errorf("expected no candidates for a single charge, got %d", len(candidates))
	}
}

func TestDetect_UnknownMerchantGetsDefaults(t *testing.T) {
	det := service.NewDetector(zap.NewNop())

	candidates := det.Detect(context.Background(), []domain.BankTransaction{
		{Merchant: "Mystery Box Club", Amount: -29.99},
		{Merchant: "Mystery Box Club", Amount: -29.99},
	})

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Category != "Other" {
		t.Errorf("expected default category Other, got %s", candidates[0].Category)
	}
	if candidates[0].Name != "mystery box club" {
		t.Errorf("expected normalized merchant as name, got %s", candidates[0].Name)
	}
}

func TestDetect_FallsBackToDescription(t *testing.T) {
	det := service.NewDetector(zap.NewNop())

	candidates := det.Detect(context.Background(), []domain.BankTransaction{
		{Description: "GITHUB PRO SUBSCRIPTION", Amount: -4},
		{Description: "GITHUB PRO SUBSCRIPTION", Amount: -4},
	})

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Name != "GitHub" {
		t.Errorf("expected GitHub matched via description, got %s", candidates[0].Name)
	}
}

func TestDetect_ConfidenceCap(t *testing.T) {
	det := service.NewDetector(zap.NewNop())

	txs := make([]domain.BankTransaction, 0, 12)
	for i := 0; i < 12; i++ {
		txs = append(txs, domain.BankTransaction{Merchant: "dropbox", Amount: -11.99})
	}

	candidates := det.Detect(context.Background(), txs)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Confidence != 0.95 {
		t.Errorf("expected confidence capped at 0.95, got %.2f", candidates[0].Confidence)
	}
}

func TestDetect_Empty(t *testing.T) {
	det := service.NewDetector(zap.NewNop())

	if got := det.Detect(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no candidates for empty input, got %d", len(got))
	}
}
