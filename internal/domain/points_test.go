package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPurchasePoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount int64
		want   string
	}{
		{name: "exact_hundred_thousand", amount: 100000, want: "1"},
		{name: "typical_purchase", amount: 500000, want: "5"},
		{name: "rounds_half_up", amount: 123456, want: "1.23"},
		{name: "rounds_up_at_midpoint", amount: 500, want: "0.01"},
		{name: "too_small_for_a_point", amount: 400, want: "0"},
		{name: "zero", amount: 0, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := PurchasePoints(tt.amount)
			want := decimal.RequireFromString(tt.want)

			if !got.Equal(want) {
				t.Fatalf("PurchasePoints(%d) = %s, want %s", tt.amount, got, want)
			}
		})
	}
}

func TestGiftPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount int64
		want   string
	}{
		{name: "one_point", amount: 5000, want: "1"},
		{name: "fifty_points", amount: 250000, want: "50"},
		{name: "fractional", amount: 2500, want: "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := GiftPoints(tt.amount)
			want := decimal.RequireFromString(tt.want)

			if !got.Equal(want) {
				t.Fatalf("GiftPoints(%d) = %s, want %s", tt.amount, got, want)
			}
		})
	}
}

func TestCurrencyValue_RoundTripsGiftPoints(t *testing.T) {
	t.Parallel()

	points := GiftPoints(250000)
	if got := CurrencyValue(points); !got.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("CurrencyValue(%s) = %s, want 250000", points, got)
	}
}

func TestClampDebit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		balance     string
		points      string
		want        string
		wantFloored bool
	}{
		{name: "normal_debit", balance: "10", points: "4", want: "6"},
		{name: "debit_to_zero", balance: "10", points: "10", want: "0"},
		{name: "floored_debit", balance: "3", points: "10", want: "0", wantFloored: true},
		{name: "zero_debit", balance: "5", points: "0", want: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, floored := ClampDebit(
				decimal.RequireFromString(tt.balance),
				decimal.RequireFromString(tt.points),
			)

			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("ClampDebit(%s, %s) = %s, want %s", tt.balance, tt.points, got, tt.want)
			}
			if floored != tt.wantFloored {
				t.Fatalf("floored = %v, want %v", floored, tt.wantFloored)
			}
		})
	}
}
