package services

import (
	"strings"
	"testing"

	"golang.org/x/text/language"

	domain "github.com/hanko-field/pricing/internal/domain"
)

func TestMoneyFormatter_KnownCurrency(t *testing.T) {
	formatter := NewMoneyFormatter(language.English)
	out := formatter.Format(domain.Money{Amount: 12345, Currency: "CHF"})
	if out == "" || !strings.Contains(out, "CHF") {
		t.Fatalf("formatted = %q, want the currency code rendered", out)
	}
}

func TestMoneyFormatter_UnknownCurrencyFallback(t *testing.T) {
	formatter := NewMoneyFormatter(language.English)
	out := formatter.Format(domain.Money{Amount: 500, Currency: "???"})
	if out != "500 ???" {
		t.Fatalf("formatted = %q, want plain fallback", out)
	}
}
