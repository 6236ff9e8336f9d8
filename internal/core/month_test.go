package core

import "testing"

func TestMonthInfo(t *testing.T) {
	cases := []struct {
		in    string
		iso   string
		month string
		ok    bool
	}{
		{"2024-07-02", "2024-07", "July", true},
		{"2024-07-31", "2024-07", "July", true},
		{"2024-08-01T00:00:00Z", "2024-08", "August", true},
		// +05:00 local midnight-ish is still July in UTC
		{"2024-07-31T23:59:59+05:00", "2024-07", "July", true},
		// -03:00 late on the 31st crosses into August in UTC
		{"2024-07-31T22:30:00-03:00", "2024-08", "August", true},
		// date-time without zone falls back to the date-only prefix
		{"2024-07-02T15:04:05", "2024-07", "July", true},
		{"2024-12-15", "2024-12", "December", true},
		{"  2024-07-02  ", "2024-07", "July", true},
		{"02.07.2024", "", "", false},
		{"yesterday", "", "", false},
		{"2024-7-2", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		iso, month, err := MonthInfo(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q unexpected error: %v", tc.in, err)
			}
			if iso != tc.iso || month != tc.month {
				t.Fatalf("%q = (%q, %q), want (%q, %q)", tc.in, iso, month, tc.iso, tc.month)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got (%q, %q)", tc.in, iso, month)
		}
	}
}
