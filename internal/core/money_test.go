package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"0", 0, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true},
		{" 2.50 ", 250, true},
		{"1,500", 150000, true},
		{"1,500.50", 150050, true},
		{".5", 50, true},
		{"+3", 300, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
		{"5.٥", 0, false},
		{"١٢", 0, false},
		{"７", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	cases := map[int64]string{
		0:      "0",
		50000:  "500",
		123456: "1234.56",
		150:    "1.5",
	}
	for cents, want := range cases {
		b, err := Money{Cents: cents}.MarshalJSON()
		if err != nil {
			t.Fatalf("marshal %d: %v", cents, err)
		}
		if string(b) != want {
			t.Fatalf("cents %d: expected %s, got %s", cents, want, b)
		}
	}
}
