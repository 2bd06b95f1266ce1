package utils

import (
	"errors"
	"testing"

	"cruisebooking/internal/domain"
)

func TestPromotionalPrice(t *testing.T) {
	if got := PromotionalPrice(1000); got != 800 {
		t.Fatalf("expected 800, got %v", got)
	}
	if got := PromotionalPrice(4150); got != 3320 {
		t.Fatalf("expected 3320, got %v", got)
	}
}

func TestDiscountPercent(t *testing.T) {
	got, err := DiscountPercent(1000, 750)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}

	if _, err := DiscountPercent(0, 100); !errors.Is(err, domain.ErrDivision) || !domain.IsValidation(err) {
		t.Fatalf("expected validation division error, got %v", err)
	}
}

func TestTotalAndPerCabinCost(t *testing.T) {
	if got := TotalCost(1000, 2); got != 2000 {
		t.Fatalf("expected 2000, got %v", got)
	}
	per, err := PerCabinCost(2000, 2)
	if err != nil || per != 1000 {
		t.Fatalf("expected 1000, got %v %v", per, err)
	}
	if _, err := PerCabinCost(2000, 0); !errors.Is(err, domain.ErrDivision) {
		t.Fatalf("expected division error, got %v", err)
	}
}

func TestFormatCurrency(t *testing.T) {
	if got := FormatCurrency("brl", 1234.5); got != "BRL 1.234,50" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := FormatCurrency("", 0); got != "BRL 0,00" {
		t.Fatalf("unexpected format %q", got)
	}
}
