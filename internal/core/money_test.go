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
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
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

func TestParseNonNegativeCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"0", 0, true},
		{"0.00", 0, true},
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"-0.01", 0, false},
		{"+5", 0, false},
		{"x", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseNonNegativeCents(tc.in)
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

func TestParseHoursToHundredths(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"8", 800, true},
		{"8.5", 850, true},
		{"7,25", 725, true},
		{"0.005", 1, true}, // half-up rounding
		{"0", 0, false},
		{"-1", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseHoursToHundredths(tc.in)
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

func TestLaborCost(t *testing.T) {
	cases := []struct {
		hundredths int64
		rateCents  int64
		out        int64
	}{
		{800, 2500, 20000},  // 8h at 25.00/h = 200.00
		{850, 2500, 21250},  // 8.5h at 25.00/h = 212.50
		{150, 3333, 5000},   // 1.5h at 33.33/h = 49.995 -> 50.00
		{100, 1, 1},         // 1h at 0.01/h
		{1, 1, 0},           // 0.01h at 0.01/h = 0.0001 -> 0
		{725, 1850, 13413},  // 7.25h at 18.50/h = 134.125 -> 134.13
		{2400, 9999, 239976}, // 24h at 99.99/h
	}
	for _, tc := range cases {
		got := LaborCost(Hours{Hundredths: tc.hundredths}, Money{Cents: tc.rateCents})
		if got.Cents != tc.out {
			t.Fatalf("LaborCost(%d, %d) = %d, want %d", tc.hundredths, tc.rateCents, got.Cents, tc.out)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1234, "12.34"},
		{-50, "-0.50"},
		{-10000, "-100.00"},
		{100000000, "1000000.00"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.in); got != tc.out {
			t.Fatalf("FormatCents(%d) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := Money{Cents: 1234}
	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "12.34" {
		t.Fatalf("marshal = %q, want %q", data, "12.34")
	}
	var back Money
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Cents != m.Cents {
		t.Fatalf("round trip = %d, want %d", back.Cents, m.Cents)
	}
	var fromString Money
	if err := fromString.UnmarshalJSON([]byte(`"7,50"`)); err != nil {
		t.Fatalf("unmarshal quoted: %v", err)
	}
	if fromString.Cents != 750 {
		t.Fatalf("quoted = %d, want 750", fromString.Cents)
	}
	var negative Money
	if err := negative.UnmarshalJSON([]byte("-1")); err == nil {
		t.Fatal("negative input expected error")
	}
}
