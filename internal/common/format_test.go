package common

import "testing"

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5.5, "$5.50"},
		{999.999, "$1,000.00"},
		{1234.56, "$1,234.56"},
		{1234567.89, "$1,234,567.89"},
		{-42.1, "-$42.10"},
	}
	for _, tc := range cases {
		if got := FormatMoney(tc.in); got != tc.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney(25); got != "+$25.00" {
		t.Errorf("expected +$25.00, got %q", got)
	}
	if got := FormatSignedMoney(-5); got != "-$5.00" {
		t.Errorf("expected -$5.00, got %q", got)
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(42.857); got != "42.86%" {
		t.Errorf("expected 42.86%%, got %q", got)
	}
	if got := FormatSignedPct(1.2); got != "+1.20%" {
		t.Errorf("expected +1.20%%, got %q", got)
	}
	if got := FormatSignedPct(-0.5); got != "-0.50%" {
		t.Errorf("expected -0.50%%, got %q", got)
	}
}

func TestFormatMarketCap(t *testing.T) {
	if got := FormatMarketCap(2.5e9); got != "$2.50B" {
		t.Errorf("expected $2.50B, got %q", got)
	}
	if got := FormatMarketCap(750e6); got != "$750.00M" {
		t.Errorf("expected $750.00M, got %q", got)
	}
}
