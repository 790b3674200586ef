package timetable

import (
	"errors"
	"testing"
)

func TestDayString(t *testing.T) {
	daily := [7]bool{true, true, true, true, true, true, true}
	moFr := [7]bool{true, true, true, true, true, false, false}
	moWeFr := [7]bool{true, false, true, false, true, false, false}
	saSu := [7]bool{false, false, false, false, false, true, true}
	moOnly := [7]bool{true, false, false, false, false, false, false}
	for _, tc := range []struct {
		description string
		days        [7]bool
		offset      int
		want        string
	}{
		{
			description: "daily",
			days:        daily,
			offset:      0,
			want:        "Daily",
		},
		{
			// A daily train is daily at every station, no matter how many
			// midnights it crosses getting there.
			description: "daily at offset",
			days:        daily,
			offset:      3,
			want:        "Daily",
		},
		{
			description: "weekday range",
			days:        moFr,
			offset:      0,
			want:        "Mo-Fr",
		},
		{
			description: "weekday range shifted past midnight",
			days:        moFr,
			offset:      1,
			want:        "Tu-Sa",
		},
		{
			description: "non-consecutive pattern",
			days:        moWeFr,
			offset:      0,
			want:        "MoWeFr",
		},
		{
			description: "non-consecutive pattern shifted",
			days:        moWeFr,
			offset:      1,
			want:        "TuThSa",
		},
		{
			description: "single day",
			days:        moOnly,
			offset:      0,
			want:        "Mo",
		},
		{
			description: "single day shifted",
			days:        moOnly,
			offset:      1,
			want:        "Tu",
		},
		{
			// Negative offsets happen when a timezone conversion pulls a time
			// into the previous day.
			description: "weekend pulled back a day",
			days:        saSu,
			offset:      -1,
			want:        "FrSa",
		},
		{
			description: "two days crossing the week boundary",
			days:        saSu,
			offset:      1,
			want:        "SuMo",
		},
		{
			description: "offset wraps a full week",
			days:        moFr,
			offset:      7,
			want:        "Mo-Fr",
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			got, err := DayString(Service{Id: "s", Days: tc.days}, tc.offset)
			if err != nil {
				t.Fatalf("DayString() error: %s", err)
			}
			if got != tc.want {
				t.Errorf("DayString() got = %q, want = %q", got, tc.want)
			}
		})
	}
}

func TestDayStringNoDays(t *testing.T) {
	_, err := DayString(Service{Id: "never"}, 0)
	if !errors.Is(err, ErrBadCalendar) {
		t.Errorf("DayString() error got = %v, want ErrBadCalendar", err)
	}
}

func TestDayStringFromCalendar(t *testing.T) {
	daily := Service{Id: "daily", Days: [7]bool{true, true, true, true, true, true, true}}
	got, err := DayStringFromCalendar([]Service{daily}, 2)
	if err != nil {
		t.Fatalf("DayStringFromCalendar() error: %s", err)
	}
	if got != "Daily" {
		t.Errorf("DayStringFromCalendar() got = %q, want = %q", got, "Daily")
	}

	if _, err := DayStringFromCalendar(nil, 0); !errors.Is(err, ErrBadCalendar) {
		t.Errorf("DayStringFromCalendar() on empty calendar: got %v, want ErrBadCalendar", err)
	}
	if _, err := DayStringFromCalendar([]Service{daily, daily}, 0); !errors.Is(err, ErrBadCalendar) {
		t.Errorf("DayStringFromCalendar() on duplicate calendar: got %v, want ErrBadCalendar", err)
	}
}
