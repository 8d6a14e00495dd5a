package http

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseMonthParam(t *testing.T) {
	cases := []struct {
		query   string
		wantOK  bool
		wantY   int
		wantM   time.Month
		current bool
	}{
		{query: "", wantOK: true, current: true},
		{query: "month=2025-03", wantOK: true, wantY: 2025, wantM: time.March},
		{query: "month=2024-12", wantOK: true, wantY: 2024, wantM: time.December},
		{query: "month=March", wantOK: false},
		{query: "month=2025-13", wantOK: false},
		{query: "month=2025-03-10", wantOK: false},
	}

	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/api/v1/transactions?"+tc.query, nil)
		got, err := parseMonthParam(r)
		if tc.wantOK != (err == nil) {
			t.Errorf("parseMonthParam(%q) err = %v, want ok=%v", tc.query, err, tc.wantOK)
			continue
		}
		if err != nil {
			continue
		}
		if tc.current {
			now := time.Now()
			if got.Year() != now.Year() || got.Month() != now.Month() {
				t.Errorf("parseMonthParam(%q) = %v, want current month", tc.query, got)
			}
			continue
		}
		if got.Year() != tc.wantY || got.Month() != tc.wantM {
			t.Errorf("parseMonthParam(%q) = %v, want %d-%d", tc.query, got, tc.wantY, tc.wantM)
		}
	}
}

func TestParseMonthsParam(t *testing.T) {
	cases := []struct {
		query  string
		want   int
		wantOK bool
	}{
		{"", 6, true},
		{"months=12", 12, true},
		{"months=1", 1, true},
		{"months=60", 60, true},
		{"months=0", 0, false},
		{"months=61", 0, false},
		{"months=-3", 0, false},
		{"months=six", 0, false},
	}

	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/api/v1/series?"+tc.query, nil)
		got, err := parseMonthsParam(r, 6)
		if tc.wantOK != (err == nil) {
			t.Errorf("parseMonthsParam(%q) err = %v, want ok=%v", tc.query, err, tc.wantOK)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("parseMonthsParam(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
}

func TestParseDateField(t *testing.T) {
	got, err := parseDateField("2025-03-10")
	if err != nil {
		t.Fatalf("parseDateField: %v", err)
	}
	if got.Year() != 2025 || got.Month() != time.March || got.Day() != 10 {
		t.Errorf("parseDateField = %v, want 2025-03-10", got)
	}

	if _, err := parseDateField("10/03/2025"); err == nil {
		t.Error("expected error for slash format")
	}

	got, err = parseDateField("  ")
	if err != nil {
		t.Fatalf("empty date: %v", err)
	}
	if time.Since(got) > time.Minute {
		t.Errorf("empty date = %v, want now", got)
	}
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"a":1}{"b":2}`))
	var dst map[string]any
	if err := decodeJSON(r, &dst); err == nil {
		t.Error("expected error for two JSON documents")
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"a":1}`))
	if err := decodeJSON(r, &dst); err != nil {
		t.Errorf("single document: %v", err)
	}
}
