package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GTFS times are strings like "8:05:00" or "26:40:00": hours count from the
// start of the trip's service day and may exceed 24. All the "character
// twiddling" needed to turn them into display text lives here.

// ExplodedTime is a GTFS time decomposed after timezone adjustment.
type ExplodedTime struct {
	Day    int // 0 = the service day; -1 and +1 happen and are meaningful
	PM     bool
	Hour12 int // 0-11
	Hour24 int // 0-23
	Minute int
	Second int
}

// ExplodeTime parses a GTFS time string, applying zoneDiffHours before
// decomposing so that a negative zone diff can legitimately produce Day -1.
func ExplodeTime(timestr string, zoneDiffHours int) (ExplodedTime, error) {
	parts := strings.Split(timestr, ":")
	if len(parts) != 3 {
		return ExplodedTime{}, feedErrorf(nil, "cannot parse GTFS time %q", timestr)
	}
	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return ExplodedTime{}, feedErrorf(nil, "cannot parse GTFS time %q", timestr)
		}
		nums[i] = n
	}
	longHours := nums[0] + zoneDiffHours
	// Floor division does the right thing for negative hours created by the
	// timezone adjustment: day -1 with a positive hour-of-day.
	days, hours24 := floorDivMod(longHours, 24)
	pm, hours12 := floorDivMod(hours24, 12)
	return ExplodedTime{
		Day:    days,
		PM:     pm == 1,
		Hour12: hours12,
		Hour24: hours24,
		Minute: nums[1],
		Second: nums[2],
	}, nil
}

func floorDivMod(a, b int) (int, int) {
	q := a / b
	r := a % b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}

// ZoneDiff returns the whole-hour difference to apply to a time in baseZone
// to get a time in localZone, on the given YYYYMMDD reference date. The
// reference date matters: Arizona does not observe DST, so the delta between
// America/Phoenix and America/Los_Angeles changes through the year.
func ZoneDiff(localZone, baseZone, referenceDate string) (int, error) {
	local, err := time.LoadLocation(localZone)
	if err != nil {
		return 0, fmt.Errorf("unknown time zone %q: %w", localZone, err)
	}
	base, err := time.LoadLocation(baseZone)
	if err != nil {
		return 0, fmt.Errorf("unknown time zone %q: %w", baseZone, err)
	}
	day, err := time.Parse("20060102", referenceDate)
	if err != nil {
		return 0, specErrorf("reference date %q is not a YYYYMMDD date", referenceDate)
	}
	// Offsets are sampled at midnight of the reference date; a DST flip at
	// 2 a.m. that day does not change the diff.
	_, localOffset := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, local).Zone()
	_, baseOffset := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, base).Zone()
	diffSeconds := localOffset - baseOffset
	if diffSeconds%3600 != 0 {
		return 0, fmt.Errorf("cannot handle timezone diffs which are not multiples of an hour: %s to %s", baseZone, localZone)
	}
	return diffSeconds / 3600, nil
}

// FormatTimeShort renders an exploded time at fixed width for column
// alignment: "23:59" (always 5 characters) in 24-hour form, "12:59P" (always
// 6 characters) in 12-hour form.
func FormatTimeShort(t ExplodedTime, use24 bool) string {
	if use24 {
		return fmt.Sprintf("%2d:%02d", t.Hour24, t.Minute)
	}
	hour := t.Hour12
	if hour == 0 {
		hour = 12
	}
	suffix := "A"
	if t.PM {
		suffix = "P"
	}
	return fmt.Sprintf("%2d:%02d%s", hour, t.Minute, suffix)
}

// timeToSeconds converts a GTFS time string to seconds since the start of
// the service day.
func timeToSeconds(timestr string) (int, error) {
	exploded, err := ExplodeTime(timestr, 0)
	if err != nil {
		return 0, err
	}
	return (exploded.Day*24+exploded.Hour24)*3600 + exploded.Minute*60 + exploded.Second, nil
}

// DwellSeconds returns departure minus arrival in seconds. Receive-only and
// discharge-only stops have no meaningful dwell and report zero.
func DwellSeconds(timepoint StopTime) (int, error) {
	if timepoint.DropOffType == PickupDropOffPolicy_No || timepoint.PickupType == PickupDropOffPolicy_No {
		return 0, nil
	}
	departure, err := timeToSeconds(timepoint.DepartureTime)
	if err != nil {
		return 0, err
	}
	arrival, err := timeToSeconds(timepoint.ArrivalTime)
	if err != nil {
		return 0, err
	}
	return departure - arrival, nil
}

// zoneAbbreviations maps IANA zone names to the two-or-three letter forms
// printed in the timezone column. North-America-centric, matching the
// agencies this was built for.
var zoneAbbreviations = map[string]string{
	// US zones used by Amtrak:
	"America/New_York":    "ET",
	"America/Chicago":     "CT",
	"America/Denver":      "MT",
	"America/Phoenix":     "MST",
	"America/Los_Angeles": "PT",
	// Canadian zones used by VIA (in addition to America/New_York):
	"America/Halifax":   "AT",
	"America/Toronto":   "ET",
	"America/Winnipeg":  "CT",
	"America/Regina":    "CST",
	"America/Edmonton":  "MT",
	"America/Vancouver": "PT",
}

// ZoneAbbreviation returns the short display form of an IANA zone name, or
// the empty string for zones outside the table.
func ZoneAbbreviation(zoneName string) string {
	return zoneAbbreviations[zoneName]
}

// GTFSDateToISO converts 20220310 to 2022-03-10.
func GTFSDateToISO(gtfsDate string) (string, error) {
	if len(gtfsDate) != 8 {
		return "", feedErrorf(nil, "GTFS date %q has wrong length", gtfsDate)
	}
	return gtfsDate[:4] + "-" + gtfsDate[4:6] + "-" + gtfsDate[6:8], nil
}
