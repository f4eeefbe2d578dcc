package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{"12.345", 1235, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1.2a", 0, false},
		{"", 0, false},
		{"   ", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyFromRupees(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{0, 0},
		{1, 100},
		{12.34, 1234},
		{0.005, 1},
		{99999.99, 9999999},
	}
	for _, tc := range cases {
		if got := MoneyFromRupees(tc.in); got.Cents != tc.out {
			t.Fatalf("MoneyFromRupees(%v) = %d cents, want %d", tc.in, got.Cents, tc.out)
		}
	}
}

func TestRupees(t *testing.T) {
	m := Money{Cents: 1234}
	if got := m.Rupees(); got != 12.34 {
		t.Fatalf("Rupees() = %v, want 12.34", got)
	}
}
