package model

import (
	"testing"
	"time"
)

func TestParseEconomicIndex(t *testing.T) {
	tests := []struct {
		input string
		want  EconomicIndex
		ok    bool
	}{
		{"cdi", IndexCDI, true},
		{"CDI", IndexCDI, true},
		{"ipca", IndexIPCA, true},
		{"IPCA", IndexIPCA, true},
		{"ima_b", IndexIMAB, true},
		{"IMA-B", IndexIMAB, true},
		{"ima_b_5plus", IndexIMAB5Sup, true},
		{"IMA-B 5+", IndexIMAB5Sup, true},
		{"selic", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseEconomicIndex(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseEconomicIndex(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  time.Time
	}{
		{
			"Mid month",
			time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			"Leap February",
			time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			"Already month end",
			time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthEnd(tt.input); !got.Equal(tt.want) {
				t.Errorf("MonthEnd(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
