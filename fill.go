package timetable

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strings"

	"github.com/transitkit/timetable/warnings"
)

// Timetable is the filled output grid: four parallel tables with the same
// shape as the spec that produced it. Text is what gets printed; Classes
// holds space-joined style tags for a downstream renderer; IsHeader marks
// header cells; Attributes carries extra renderer attributes. Every cell is
// explicitly filled -- blanks are empty strings, never absent.
type Timetable struct {
	Text       [][]string
	Classes    [][]string
	IsHeader   [][]bool
	Attributes [][]string
	// Warnings collects the non-fatal diagnostics hit during the fill.
	Warnings []warnings.Warning
}

func newTimetable(rows, cols int) *Timetable {
	t := &Timetable{}
	for y := 0; y < rows; y++ {
		t.Text = append(t.Text, make([]string, cols))
		t.Classes = append(t.Classes, make([]string, cols))
		t.IsHeader = append(t.IsHeader, make([]bool, cols))
		t.Attributes = append(t.Attributes, make([]string, cols))
	}
	return t
}

// WriteCSV serializes the text layer. Styling and header flags don't
// survive; this output is for plaintext proofing and diffing.
func (t *Timetable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, row := range t.Text {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Fill walks the spec grid against the feed and produces the filled
// timetable. The spec must have been run through StripOmits,
// ExtractColumnOptions and ExpandKeyRow; the feed must already be filtered to
// the spec's reference date (and, ideally, to the relevant trains).
//
// ag supplies everything agency-specific; logger receives the non-fatal
// warnings that are also collected on the result. A nil logger uses the
// default.
func Fill(spec *GridSpec, feed *Feed, ag AgencyCapabilities, logger *slog.Logger) (*Timetable, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if spec.Options.ReferenceDate == "" {
		return nil, specErrorf("no reference date set; cannot fill a timetable")
	}
	if spec.ColumnOptions == nil {
		return nil, specErrorf("cannot fill before column options are extracted")
	}
	if len(feed.Agencies) == 0 {
		return nil, feedErrorf(nil, "feed has no agency; cannot determine base timezone")
	}

	flattened := FlattenTrainSpecs(spec.TrainSpecColumnKeys())
	idx, err := newTrainSpecIndex(feed, flattened, ag, spec.Options.AllowDuplicateTrips, logger)
	if err != nil {
		return nil, err
	}

	f := &filler{
		spec:   spec,
		feed:   feed,
		ag:     ag,
		idx:    idx,
		logger: logger,
		// GTFS allows only one agency timezone per feed, so any row will do.
		agencyTz:  feed.Agencies[0].Timezone,
		stopsById: map[string]Stop{},
		zoneDiffs: map[string]int{},
		stations:  spec.StationCodes(),
	}
	for _, stop := range feed.Stops {
		f.stopsById[stop.Id] = stop
	}
	if err := f.prepareArdp(flattened); err != nil {
		return nil, err
	}

	t := newTimetable(spec.RowCount(), spec.ColumnCount())
	t.Warnings = append(t.Warnings, idx.warnings...)
	for x := 1; x < spec.ColumnCount(); x++ {
		if err := f.fillColumn(t, x); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// filler is the per-run state: the memoized lookup maps, the timezone
// caches, and the two-row decision function. Building these once per run
// instead of once per cell is what keeps the double loop tolerable.
type filler struct {
	spec      *GridSpec
	feed      *Feed
	ag        AgencyCapabilities
	idx       *trainSpecIndex
	logger    *slog.Logger
	agencyTz  string
	stopsById map[string]Stop
	zoneDiffs map[string]int // stop timezone -> whole-hour diff from agency tz
	stations  []string
	ardpFn    func(stationCode string) bool
}

// prepareArdp builds the two-row decision function from the ardp_mode
// option. In dwell mode this precomputes the per-station max dwell across
// all the spec's trains, the second-slowest step of the whole program.
func (f *filler) prepareArdp(flattened []TrainSpec) error {
	switch f.spec.Options.ArdpMode {
	case "never":
		f.ardpFn = func(string) bool { return false }
	case "always":
		f.ardpFn = func(string) bool { return true }
	case "major":
		f.ardpFn = f.ag.IsStandardMajorStation
	default: // dwell
		cutoff := f.spec.Options.DwellSecsCutoff
		twoRow := map[string]bool{}
		for _, stationCode := range f.stations {
			stopId := f.ag.StopCodeToStopId(stationCode)
			maxDwell := 0
			for _, spec := range flattened {
				trip, err := f.idx.Trip(spec)
				if err != nil {
					return err
				}
				dwell, err := f.feed.DwellSecs(trip.Id, stopId)
				if err != nil {
					return err
				}
				if dwell > maxDwell {
					maxDwell = dwell
				}
			}
			twoRow[stationCode] = maxDwell >= cutoff
		}
		f.ardpFn = func(stationCode string) bool { return twoRow[stationCode] }
	}
	return nil
}

// colorClass returns the style tag for a train's cells and header,
// classified first-match-wins: sleeper, then high-speed, then connecting
// service, then specially-colored, then bus, then plain day train.
func (f *filler) colorClass(spec TrainSpec) (string, error) {
	route, err := f.idx.Route(spec)
	if err != nil {
		return "", err
	}
	switch {
	case f.ag.IsSleeperTrain(spec.Number):
		return "color-sleeper", nil
	case f.ag.IsHighSpeedTrain(spec.Number):
		return "color-high-speed-train", nil
	case f.ag.IsConnectingService(spec.Number):
		return "color-connecting-train", nil
	case f.ag.IsSpeciallyColoredTrain(spec.Number):
		return "color-special", nil
	case route.Type == RouteType_Bus:
		return "color-bus", nil
	}
	return "color-day-train", nil
}

// zoneDiffFor returns the whole-hour adjustment from the agency timezone to
// the stop's timezone, memoized. Stops without their own timezone inherit
// the agency's.
func (f *filler) zoneDiffFor(stopTz string) (int, error) {
	if stopTz == "" || stopTz == f.agencyTz {
		return 0, nil
	}
	if diff, ok := f.zoneDiffs[stopTz]; ok {
		return diff, nil
	}
	diff, err := ZoneDiff(stopTz, f.agencyTz, f.spec.Options.ReferenceDate)
	if err != nil {
		return 0, err
	}
	f.zoneDiffs[stopTz] = diff
	return diff, nil
}

func (f *filler) stopTimezone(stopId string) string {
	if stop, ok := f.stopsById[stopId]; ok && stop.Timezone != "" {
		return stop.Timezone
	}
	return f.agencyTz
}

func (f *filler) stationInGrid(stationCode string) bool {
	for _, code := range f.stations {
		if code == stationCode {
			return true
		}
	}
	return false
}

// activeSpecs returns the column's train specs with noheader markers
// cleared: every spec participates in cell lookups regardless of header
// display.
func activeSpecs(specs []TrainSpec) []TrainSpec {
	active := make([]TrainSpec, len(specs))
	for i, spec := range specs {
		spec.NoHeader = false
		active[i] = spec
	}
	return active
}

// columnContext is everything decided once per column and reused for every
// cell in it.
type columnContext struct {
	x          int
	key        string // raw header text
	special    bool   // reserved column name, not a train column
	specs      []TrainSpec
	firstSpec  TrainSpec // first non-noheader spec, for single-train cases
	reverse    bool
	days       bool
	ardp       bool
	noRD       bool
	useBusIcon bool
	useBaggage bool
}

func (f *filler) fillColumn(t *Timetable, x int) error {
	key := strings.TrimSpace(f.spec.Cells[0][x])
	ctx := &columnContext{x: x, key: key}
	headerClasses := []string{"col_heading"}

	switch strings.ToLower(key) {
	case "station", "stations":
		ctx.special = true
		t.Text[0][x] = stationColumnHeader
	case "services":
		ctx.special = true
		t.Text[0][x] = servicesColumnHeader
	case "access":
		ctx.special = true
		t.Text[0][x] = accessColumnHeader
	case "timezone":
		ctx.special = true
		t.Text[0][x] = timezoneColumnHeader
	case "mile":
		ctx.special = true
		t.Text[0][x] = mileColumnHeader
	case "":
		ctx.special = true
	default:
		ctx.specs = SplitTrainSpecs(key)
		ctx.reverse = f.spec.ColumnHasOption(x, "reverse")
		ctx.days = f.spec.ColumnHasOption(x, "days")
		ctx.ardp = f.spec.ColumnHasOption(x, "ardp")
		ctx.noRD = f.spec.ColumnHasOption(x, "no-rd")

		header, err := TimeColumnHeader(ctx.specs, f.idx.Route, f.spec.Options.TrainNumbersSideBySide)
		if err != nil {
			return err
		}
		t.Text[0][x] = header

		// Header color follows the first spec that appears in the header.
		for _, spec := range ctx.specs {
			if spec.NoHeader {
				continue
			}
			spec.NoHeader = false
			color, err := f.colorClass(spec)
			if err != nil {
				return err
			}
			headerClasses = append(headerClasses, color)
			break
		}

		active := activeSpecs(ctx.specs)
		ctx.firstSpec = active[0]
		if f.spec.Options.UseBusIconInCells {
			for _, spec := range active {
				route, err := f.idx.Route(spec)
				if err != nil {
					return err
				}
				if route.Type == RouteType_Bus {
					ctx.useBusIcon = true
					break
				}
			}
		}
		for _, spec := range active {
			if f.ag.TrainHasCheckedBaggage(spec.Number) {
				ctx.useBaggage = true
				break
			}
		}
	}

	t.Classes[0][x] = strings.Join(headerClasses, " ")
	t.IsHeader[0][x] = true
	t.Attributes[0][x] = `scope="col" role="columnheader"`

	for y := 1; y < f.spec.RowCount(); y++ {
		if err := f.fillCell(t, ctx, y); err != nil {
			return err
		}
	}
	return nil
}

// fillCell classifies and fills one cell. The cases run strictly top to
// bottom and the first match wins; the order is load-bearing, not
// incidental. Reordering these changes which meaning a cell gets.
func (f *filler) fillCell(t *Timetable, ctx *columnContext, y int) error {
	stationCode := strings.TrimSpace(f.spec.Cells[y][0])
	rowName := strings.ToLower(stationCode)
	cellText := strings.TrimSpace(f.spec.Cells[y][ctx.x])

	// Cell codes like "28 last". Usually nil.
	cellCode := ParseCellCode(cellText, ctx.specs)
	// Simple substitutions ("blank", arrows) are a preprocessing pass: the
	// substituted text flows through classification as literal text.
	if substituted, ok := CellSubstitution(cellText); ok {
		cellText = substituted
	}

	var classes []string
	emit := func(text string, cls ...string) {
		t.Text[y][ctx.x] = text
		classes = append(classes, cls...)
	}

	switch {
	// Case 1: no station, no content.
	case rowName == "" && cellText == "":
		emit("")

	// Case 2: no station but handwritten content ("to Chicago"), or a
	// colored-blank code like "91 blank".
	case rowName == "":
		if cellCode != nil && cellCode.Blank {
			color, err := f.colorClass(*cellCode.TrainSpec)
			if err != nil {
				return err
			}
			emit("", "blank-cell", color)
		} else {
			emit(cellText, "special-cell")
		}

	// Case 3: route-name row.
	case rowName == "route-name":
		if ctx.special {
			emit(cellText, "route-name-cell")
			break
		}
		names, color, err := f.routeNames(ctx)
		if err != nil {
			return err
		}
		emit(names, "route-name-cell", color)

	// Case 4: updown row.
	case rowName == "updown":
		if ctx.special {
			emit(cellText, "updown-cell")
			break
		}
		emit(UpdownLabel(ctx.reverse), "updown-cell")

	// Case 5: days-of-week row.
	case rowName == "days" || rowName == "days-of-week":
		if ctx.special {
			emit(cellText, "days-of-week-cell")
			break
		}
		color, err := f.colorClass(ctx.firstSpec)
		if err != nil {
			return err
		}
		if cellText == "" {
			// No reference stop. Sensible for trains running across
			// midnight, where no one day string is right.
			emit("", "days-of-week-cell", color)
			break
		}
		dayString, err := f.daysRowText(ctx, cellText)
		if err != nil {
			return err
		}
		emit(dayString, "days-of-week-cell", color)

	// Case 6: mile column, hand-typed mileage.
	case strings.EqualFold(ctx.key, "mile"):
		emit(cellText, "mile-cell")

	// Case 7: handwritten text anywhere else, as long as it is not a cell
	// code (cell codes are consumed by the time cases below).
	case cellText != "" && cellCode == nil:
		emit(cellText, "special-cell")

	// Case 8: origin/destination rows.
	case rowName == "origin" || rowName == "destination":
		if isSpecialColumnName(ctx.key) {
			if lower := strings.ToLower(ctx.key); lower == "station" || lower == "stations" {
				// Spacer so the row doesn't collapse on pages where no
				// column has an origin/destination note.
				emit(originDestinationSpacer)
			} else {
				emit(cellText)
			}
			break
		}
		text, err := f.originDestinationText(ctx, rowName == "origin")
		if err != nil {
			return err
		}
		emit(text)

	// Case 9: station-name column.
	case strings.EqualFold(ctx.key, "station") || strings.EqualFold(ctx.key, "stations"):
		major := f.ag.IsStandardMajorStation(stationCode)
		emit(f.ag.PrettyStationName(stationCode, major, StationNameMode_Multiline), "station-cell")

	// Case 10: services column. Reserved; always blank for now.
	case strings.EqualFold(ctx.key, "services"):
		emit("", "services-cell")

	// Case 11: access column.
	case strings.EqualFold(ctx.key, "access"):
		access := ""
		if f.ag.StationHasAccessiblePlatform(stationCode) {
			access = accessibleGlyph
		} else if f.ag.StationHasInaccessiblePlatform(stationCode) {
			access = inaccessibleGlyph
		}
		emit(access, "access-cell")

	// Case 12: timezone column.
	case strings.EqualFold(ctx.key, "timezone"):
		stopId := f.ag.StopCodeToStopId(stationCode)
		emit(ZoneAbbreviation(f.stopTimezone(stopId)), "timezone-cell")

	// Case 13: a real train-at-station intersection.
	default:
		if err := f.fillTimeCell(t, ctx, y, stationCode, cellCode); err != nil {
			return err
		}
		classes = append(classes, strings.Fields(t.Classes[y][ctx.x])...)
	}

	t.Classes[y][ctx.x] = strings.Join(classes, " ")
	return nil
}

// routeNames builds the route-name row text for a train column: the display
// name of each non-noheader train, with consecutive duplicates collapsed (a
// slashed column usually shares one physical route). Color follows the first
// train shown.
func (f *filler) routeNames(ctx *columnContext) (string, string, error) {
	var names []string
	color := ""
	for _, spec := range ctx.specs {
		if spec.NoHeader {
			continue
		}
		spec.NoHeader = false
		trip, err := f.idx.Trip(spec)
		if err != nil {
			return "", "", err
		}
		name := f.ag.RouteDisplayName(f.feed, trip.RouteId)
		if len(names) == 0 || names[len(names)-1] != name {
			names = append(names, name)
		}
		if color == "" {
			color, err = f.colorClass(spec)
			if err != nil {
				return "", "", err
			}
		}
	}
	return strings.Join(names, "\n"), color, nil
}

// daysRowText computes the day string for a days row whose cell names a
// reference stop. Only the column's first train is consulted; if it does not
// stop at the reference stop the cell text passes through as a manual
// override.
func (f *filler) daysRowText(ctx *columnContext, referenceStopCode string) (string, error) {
	if len(ctx.specs) > 1 {
		f.logger.Warn("days row uses only the first train of a slashed column",
			"train", ctx.firstSpec.Key(), "column", ctx.key)
	}
	trip, err := f.idx.Trip(ctx.firstSpec)
	if err != nil {
		return "", err
	}
	stopId := f.ag.StopCodeToStopId(referenceStopCode)
	timepoint, err := f.feed.TimepointFor(trip.Id, stopId)
	if err != nil {
		return "", err
	}
	if timepoint == nil {
		return referenceStopCode, nil
	}
	zoneDiff, err := f.zoneDiffFor(f.stopTimezone(stopId))
	if err != nil {
		return "", err
	}
	departure, err := ExplodeTime(timepoint.DepartureTime, zoneDiff)
	if err != nil {
		return "", err
	}
	return DayStringFromCalendar(f.calendarFor(trip), departure.Day)
}

func (f *filler) calendarFor(trip Trip) []Service {
	var calendar []Service
	for _, service := range f.feed.Calendar {
		if service.Id == trip.ServiceId {
			calendar = append(calendar, service)
		}
	}
	return calendar
}

// originDestinationText renders the origin or destination row for a train
// column, looking only at the column's first train. The station name is
// shown only when that station has no row of its own in this grid; a
// redundant "from X" note under a printed X row helps no one.
func (f *filler) originDestinationText(ctx *columnContext, origin bool) (string, error) {
	key := ctx.firstSpec.Key()
	endpoint, ok := f.idx.lastStop[key]
	if origin {
		endpoint, ok = f.idx.firstStop[key]
	}
	if !ok || f.stationInGrid(endpoint) {
		return "", nil
	}
	major := f.ag.IsStandardMajorStation(endpoint)
	return f.ag.PrettyStationName(endpoint, major, StationNameMode_SingleLine), nil
}

// fillTimeCell handles the normal case: a station row meeting a train
// column. For a slashed column the first train that stops here wins; when
// none do, the cell goes blank in the train's color, a visual "this train
// skips this stop" cue -- unless several trains were in play, in which case
// the blank stays uncolored rather than imply a wrong association.
func (f *filler) fillTimeCell(t *Timetable, ctx *columnContext, y int, stationCode string, cellCode *CellCode) error {
	stopId := f.ag.StopCodeToStopId(stationCode)

	var specsToCheck []TrainSpec
	if cellCode != nil && cellCode.TrainSpec != nil {
		specsToCheck = []TrainSpec{*cellCode.TrainSpec}
	} else {
		specsToCheck = activeSpecs(ctx.specs)
	}

	var chosen TrainSpec
	var trip Trip
	var timepoint *StopTime
	for _, spec := range specsToCheck {
		candidate, err := f.idx.Trip(spec)
		if err != nil {
			return err
		}
		tp, err := f.feed.TimepointFor(candidate.Id, stopId)
		if err != nil {
			return err
		}
		if tp != nil {
			chosen, trip, timepoint = spec, candidate, tp
			break
		}
	}

	if timepoint == nil || (cellCode != nil && cellCode.Blank) {
		t.Text[y][ctx.x] = ""
		classes := []string{"blank-cell"}
		if len(specsToCheck) == 1 {
			color, err := f.colorClass(specsToCheck[0])
			if err != nil {
				return err
			}
			classes = append(classes, color)
		} else {
			w := warnings.UnstyledBlankCell{StationCode: stationCode, ColumnKey: ctx.key}
			t.Warnings = append(t.Warnings, w)
			f.logger.Warn("blank cell left uncolored", "detail", w.Error())
		}
		t.Classes[y][ctx.x] = strings.Join(classes, " ")
		return nil
	}

	color, err := f.colorClass(chosen)
	if err != nil {
		return err
	}

	var calendar []Service
	if ctx.days {
		calendar = f.calendarFor(trip)
	}

	isFirstStop := cellCode != nil && cellCode.First
	isLastStop := cellCode != nil && cellCode.Last
	// Autodetected first/last stop; the manual codes remain as overrides for
	// stations the detection cannot see (connecting trains, split specs).
	if f.idx.firstStop[chosen.Key()] == stationCode {
		isFirstStop = true
	}
	if f.idx.lastStop[chosen.Key()] == stationCode {
		isLastStop = true
	}

	twoRow := f.ardpFn(stationCode)
	if cellCode != nil {
		if !cellCode.TwoRow && (cellCode.First || cellCode.Last) {
			twoRow = false
		}
		if cellCode.TwoRow {
			twoRow = true
		}
	}

	isBus := false
	if ctx.useBusIcon {
		route, err := f.idx.Route(chosen)
		if err != nil {
			return err
		}
		isBus = route.Type == RouteType_Bus
	}

	zoneDiff, err := f.zoneDiffFor(f.stopTimezone(stopId))
	if err != nil {
		return err
	}

	text, err := formatTimeCell(*timepoint, timeCellConfig{
		ZoneDiffHours: zoneDiff,
		Use24:         f.spec.Options.Times24h,
		Reverse:       ctx.reverse,
		TwoRow:        twoRow,
		UseArDp:       ctx.ardp,
		UseDayString:  ctx.days,
		Calendar:      calendar,
		IsFirstStop:   isFirstStop,
		IsLastStop:    isLastStop,
		UseBaggage:    ctx.useBaggage,
		HasBaggage:    ctx.useBaggage && f.ag.TrainHasCheckedBaggage(chosen.Number) && f.ag.StationHasCheckedBaggage(stationCode),
		UseBus:        ctx.useBusIcon,
		IsBus:         isBus,
		NoRD:          ctx.noRD,
	})
	if err != nil {
		return err
	}
	t.Text[y][ctx.x] = text
	t.Classes[y][ctx.x] = strings.Join([]string{"time-cell", color}, " ")
	return nil
}
