package timetable

// Compact "MoWeFr" style presentation of a weekly operating pattern.
//
// The offset argument shifts the pattern for stops reached more than 24 hours
// after the initial departure (positive) or pulled into the previous day by a
// timezone conversion (negative): a Mo-Fr train that arrives somewhere at
// hour 26 serves that stop Tu-Sa, and the displayed string must say so.

var dayAbbreviations = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// dayStringSpecialCases maps rotated operating patterns that read naturally
// as a range (or a short pair) to their canonical short form. Patterns not in
// the table -- the non-consecutive ones -- go through the general-case
// assembler instead. This is easier to read than hand-writing the if-thens.
var dayStringSpecialCases = map[[7]bool]string{
	{true, true, true, true, true, true, true}: "Daily",
	// Missing only one day
	{true, true, true, true, true, true, false}: "Mo-Sa",
	{false, true, true, true, true, true, true}: "Tu-Su",
	{true, false, true, true, true, true, true}: "We-Mo",
	{true, true, false, true, true, true, true}: "Th-Tu",
	{true, true, true, false, true, true, true}: "Fr-We",
	{true, true, true, true, false, true, true}: "Sa-Th",
	{true, true, true, true, true, false, true}: "Su-Fr",
	// Missing two consecutive days (including Mo-Fr)
	{true, true, true, true, true, false, false}: "Mo-Fr",
	{false, true, true, true, true, true, false}: "Tu-Sa",
	{false, false, true, true, true, true, true}: "We-Su",
	{true, false, false, true, true, true, true}: "Th-Mo",
	{true, true, false, false, true, true, true}: "Fr-Tu",
	{true, true, true, false, false, true, true}: "Sa-We",
	{true, true, true, true, false, false, true}: "Su-Th",
	// Missing three consecutive days
	{true, true, true, true, false, false, false}: "Mo-Th",
	{false, true, true, true, true, false, false}: "Tu-Fr",
	{false, false, true, true, true, true, false}: "We-Sa",
	{false, false, false, true, true, true, true}: "Th-Su",
	{true, false, false, false, true, true, true}: "Fr-Mo",
	{true, true, false, false, false, true, true}: "Sa-Tu",
	{true, true, true, false, false, false, true}: "Su-We",
	// Missing four consecutive days
	{true, true, true, false, false, false, false}: "Mo-We",
	{false, true, true, true, false, false, false}: "Tu-Th",
	{false, false, true, true, true, false, false}: "We-Fr",
	{false, false, false, true, true, true, false}: "Th-Sa",
	{false, false, false, false, true, true, true}: "Fr-Su",
	{true, false, false, false, false, true, true}: "Sa-Mo",
	{true, true, false, false, false, false, true}: "Su-Tu",
	// Only running two consecutive days
	// (including SaSu, which must not come out as SuSa in -1 offset cases)
	{true, true, false, false, false, false, false}: "MoTu",
	{false, true, true, false, false, false, false}: "TuWe",
	{false, false, true, true, false, false, false}: "WeTh",
	{false, false, false, true, true, false, false}: "ThFr",
	{false, false, false, false, true, true, false}: "FrSa",
	{false, false, false, false, false, true, true}: "SaSu",
	{true, false, false, false, false, false, true}: "SuMo",
	// Only running one day a week
	{true, false, false, false, false, false, false}: "Mo",
	{false, true, false, false, false, false, false}: "Tu",
	{false, false, true, false, false, false, false}: "We",
	{false, false, false, true, false, false, false}: "Th",
	{false, false, false, false, true, false, false}: "Fr",
	{false, false, false, false, false, true, false}: "Sa",
	{false, false, false, false, false, false, true}: "Su",
}

// DayString renders a service's weekly pattern as a compact human string such
// as "Daily", "Mo-Fr" or "MoWeFr", shifted by offset days.
func DayString(service Service, offset int) (string, error) {
	// Timezone differences can produce a -1 offset; later stations on a
	// multi-day route produce positive offsets.
	offset = ((offset % 7) + 7) % 7

	var rotated [7]bool
	for i := range rotated {
		rotated[i] = service.Days[(((i-offset)%7)+7)%7]
	}
	if short, ok := dayStringSpecialCases[rotated]; ok {
		return short, nil
	}

	// General case: non-consecutive days like Mon/Wed/Fri. Assemble two-letter
	// abbreviations in the order of the original zero-offset pattern, with
	// each label re-indexed by the offset so the labels cycle with the clock.
	// That puts Su first instead of Mo for -1 offsets, which is fine.
	var assembled string
	for i, runs := range service.Days {
		if runs {
			assembled += dayAbbreviations[(i+offset)%7]
		}
	}
	if assembled == "" {
		return "", feedErrorf(ErrBadCalendar, "service %s has no days of operation", service.Id)
	}
	return assembled, nil
}

// DayStringFromCalendar is DayString over a calendar slice that must contain
// exactly one row. Zero or duplicate rows mean the feed was not reduced to a
// single reference date and its data cannot be trusted.
func DayStringFromCalendar(calendar []Service, offset int) (string, error) {
	if len(calendar) == 0 {
		return "", feedErrorf(ErrBadCalendar, "day string requires a calendar row, got none")
	}
	if len(calendar) > 1 {
		return "", feedErrorf(ErrBadCalendar, "day string requires exactly one calendar row, got %d", len(calendar))
	}
	return DayString(calendar[0], offset)
}
