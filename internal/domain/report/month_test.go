package report

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid", input: "2025-07", want: "2025-07"},
		{name: "valid single digit month", input: "2025-01", want: "2025-01"},
		{name: "missing zero padding", input: "2025-7", wantErr: true},
		{name: "with day", input: "2025-07-01", wantErr: true},
		{name: "month out of range", input: "2025-13", wantErr: true},
		{name: "year too old", input: "1999-12", wantErr: true},
		{name: "year too far", input: "2101-01", wantErr: true},
		{name: "garbage", input: "july 2025", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			month, err := ParseMonth(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMonth(%q) expected error, got %v", tt.input, month)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) failed: %v", tt.input, err)
			}
			if month.String() != tt.want {
				t.Fatalf("ParseMonth(%q) = %s, want %s", tt.input, month, tt.want)
			}
		})
	}
}

func TestMonthBounds(t *testing.T) {
	month := Month{Year: 2025, Month: time.December}
	start, end := month.Bounds()

	if !start.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", end)
	}

	inside := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	if inside.Before(start) || !inside.Before(end) {
		t.Fatalf("end of month should fall inside the window")
	}
}

func TestMonthPrev(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "2025-03", want: "2025-02"},
		{in: "2025-01", want: "2024-12"},
	}
	for _, tt := range tests {
		month, err := ParseMonth(tt.in)
		if err != nil {
			t.Fatalf("ParseMonth(%q) failed: %v", tt.in, err)
		}
		if got := month.Prev().String(); got != tt.want {
			t.Fatalf("Prev(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestLastCompletedMonths(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	months := lastCompletedMonths(now, 3)

	want := []string{"2025-07", "2025-06", "2025-05"}
	if len(months) != len(want) {
		t.Fatalf("got %d months, want %d", len(months), len(want))
	}
	for i, m := range months {
		if m.String() != want[i] {
			t.Fatalf("months[%d] = %s, want %s", i, m, want[i])
		}
	}
}

func TestLastCompletedMonthsCrossesYear(t *testing.T) {
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	months := lastCompletedMonths(now, 3)

	want := []string{"2024-12", "2024-11", "2024-10"}
	for i, m := range months {
		if m.String() != want[i] {
			t.Fatalf("months[%d] = %s, want %s", i, m, want[i])
		}
	}
}
