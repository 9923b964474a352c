package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAddMonthsClampsToShorterMonth(t *testing.T) {
	tests := []struct {
		name   string
		start  Date
		months int
		want   Date
	}{
		{"jan 31 into february", New(2023, time.January, 31), 1, New(2023, time.February, 28)},
		{"jan 31 into leap february", New(2024, time.January, 31), 1, New(2024, time.February, 29)},
		{"mar 31 into april", New(2024, time.March, 31), 1, New(2024, time.April, 30)},
		{"mid-month unaffected", New(2024, time.June, 15), 1, New(2024, time.July, 15)},
		{"across year boundary", New(2024, time.November, 30), 3, New(2025, time.February, 28)},
		{"negative step", New(2024, time.March, 31), -1, New(2024, time.February, 29)},
		{"twelve months", New(2024, time.February, 29), 12, New(2025, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.AddMonths(tt.months)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonths(%d) = %s, want %s", tt.months, got, tt.want)
			}
		})
	}
}

func TestAddPeriod(t *testing.T) {
	start := New(2024, time.January, 15)

	tests := []struct {
		freq Frequency
		want Date
	}{
		{Weekly, New(2024, time.January, 22)},
		{Biweekly, New(2024, time.January, 29)},
		{Monthly, New(2024, time.February, 15)},
		{Quarterly, New(2024, time.April, 15)},
		{Yearly, New(2025, time.January, 15)},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			got := start.AddPeriod(tt.freq, 1)
			if !got.Equal(tt.want) {
				t.Errorf("AddPeriod(%s, 1) = %s, want %s", tt.freq, got, tt.want)
			}
		})
	}

	t.Run("multiple counts", func(t *testing.T) {
		got := start.AddPeriod(Monthly, 3)
		want := New(2024, time.April, 15)
		if !got.Equal(want) {
			t.Errorf("AddPeriod(monthly, 3) = %s, want %s", got, want)
		}
	})
}

func TestCompare(t *testing.T) {
	a := New(2024, time.March, 10)
	b := New(2024, time.March, 11)
	c := New(2024, time.April, 1)

	if Compare(a, b) != -1 {
		t.Errorf("Compare(%s, %s) = %d, want -1", a, b, Compare(a, b))
	}
	if Compare(c, a) != 1 {
		t.Errorf("Compare(%s, %s) = %d, want 1", c, a, Compare(c, a))
	}
	if Compare(a, a) != 0 {
		t.Errorf("Compare(%s, %s) = %d, want 0", a, a, Compare(a, a))
	}
	if !a.Before(b) || b.After(c) || !a.Equal(a) {
		t.Error("Before/After/Equal inconsistent with Compare")
	}
}

func TestParseAndString(t *testing.T) {
	d, err := Parse("2024-02-29")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Errorf("round trip = %s, want 2024-02-29", d)
	}

	if _, err := Parse("not-a-date"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := New(2024, time.December, 5)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"2024-12-05"` {
		t.Errorf("Marshal = %s, want \"2024-12-05\"", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}

func TestDaysBetween(t *testing.T) {
	a := New(2024, time.January, 1)
	b := New(2024, time.February, 1)

	if got := DaysBetween(a, b); got != 31 {
		t.Errorf("DaysBetween = %d, want 31", got)
	}
	if got := DaysBetween(b, a); got != -31 {
		t.Errorf("reverse DaysBetween = %d, want -31", got)
	}
}

func TestParseFrequency(t *testing.T) {
	for _, valid := range []string{"weekly", "biweekly", "monthly", "quarterly", "yearly"} {
		if _, err := ParseFrequency(valid); err != nil {
			t.Errorf("ParseFrequency(%q) unexpected error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "daily", "Monthly", "fortnightly"} {
		if _, err := ParseFrequency(invalid); err == nil {
			t.Errorf("ParseFrequency(%q) expected error", invalid)
		}
	}
}
