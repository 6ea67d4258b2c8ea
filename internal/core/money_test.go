package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 1, true},
		{"0", 0, true},
		{"40000", 40000, true},
		{" 2500 ", 2500, true},
		{"¥1,200", 1200, true},
		{"￥300", 300, true},
		{"1,000,000", 1000000, true},
		{"-1", 0, false},
		{"12.5", 0, false},
		{"abc", 0, false},
		{"１２", 0, false}, // full-width digits
		{"", 0, false},
		{"¥", 0, false},
		{"99999999999999999999", 0, false},
		{"1000000000000", MaxAmount, true},
		{"1000000000001", 0, false},
		{"9223372036854775807", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %d", tc.in, got)
		}
	}
}

func TestParseAmountTooLarge(t *testing.T) {
	if _, err := ParseAmount("1,000,000,000,001"); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestFormatYen(t *testing.T) {
	cases := map[int64]string{
		0:        "¥0",
		999:      "¥999",
		1000:     "¥1,000",
		40000:    "¥40,000",
		1234567:  "¥1,234,567",
		-500:     "-¥500",
		-1500000: "-¥1,500,000",
	}
	for in, want := range cases {
		if got := FormatYen(in); got != want {
			t.Errorf("FormatYen(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatExpenseDate(t *testing.T) {
	d := time.Date(2022, 8, 24, 9, 5, 0, 0, time.UTC)
	if got := FormatExpenseDate(d, false); got != "2022年8月24日" {
		t.Errorf("date only = %q", got)
	}
	if got := FormatExpenseDate(d, true); got != "2022年8月24日 09:05" {
		t.Errorf("date with time = %q", got)
	}
}
