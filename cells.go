package timetable

import "strings"

// Plaintext glyphs used in cells. These stand in for the icon assets the
// HTML/PDF renderers substitute downstream.
const (
	baggageGlyph      = "G"
	busGlyph          = "B"
	accessibleGlyph   = "W"
	inaccessibleGlyph = "N"
)

// cellSubstitutions maps reserved simple cell texts to their display form.
// These are preprocessing substitutions: once applied, the cell skips the
// rest of classification.
var cellSubstitutions = map[string]string{
	"blank":          " ",
	"downarrow":      "↓",
	"uparrow":        "↑",
	"rightarrow":     "→",
	"downrightarrow": "↘",
	"rightdownarrow": "↘",
	"uprightarrow":   "↗",
	"rightuparrow":   "↗",
}

// CellSubstitution looks up a simple substitution token ("blank",
// "downarrow", ...). The second return is false when the text is not one.
func CellSubstitution(cellText string) (string, bool) {
	s, ok := cellSubstitutions[strings.TrimSpace(cellText)]
	return s, ok
}

// CellCode is the decoded form of special text in a data cell, like
// "91 last" or "59 blank" or "two_row". The train spec, when present, narrows
// the cell's lookup to that one train.
type CellCode struct {
	TrainSpec *TrainSpec
	First     bool
	Last      bool
	Blank     bool
	TwoRow    bool
}

// ParseCellCode deciphers special code text in a cell. The code leads with an
// optional train spec drawn from the column's active list, followed by
// "first", "last", "blank" or a two-row marker. Returns nil if the text is
// not a code -- the usual case -- including when it names a train that is not
// among the column's specs (then it is treated as literal text).
func ParseCellCode(codeText string, columnSpecs []TrainSpec) *CellCode {
	codeText = strings.TrimSpace(codeText)
	if codeText == "" {
		return nil
	}

	// The column specs may carry noheader markers; irrelevant here.
	inColumn := func(key string) (*TrainSpec, bool) {
		for _, spec := range columnSpecs {
			spec.NoHeader = false
			if spec.Key() == key {
				return &spec, true
			}
		}
		return nil, false
	}

	code := &CellCode{}
	for _, marker := range []string{"two_row", "two-row", "tworow"} {
		if rest, ok := strings.CutSuffix(codeText, marker); ok {
			code.TwoRow = true
			codeText = strings.TrimSpace(rest)
			break
		}
	}

	if rest, ok := strings.CutSuffix(codeText, "last"); ok {
		code.Last = true
		key := strings.TrimSpace(rest)
		if key == "" {
			return code
		}
		spec, ok := inColumn(key)
		if !ok {
			return nil
		}
		code.TrainSpec = spec
		return code
	}

	if rest, ok := strings.CutSuffix(codeText, "first"); ok {
		code.First = true
		key := strings.TrimSpace(rest)
		if key == "" {
			return code
		}
		spec, ok := inColumn(key)
		if !ok {
			return nil
		}
		code.TrainSpec = spec
		return code
	}

	// "59 blank": colored blank cell. Bare "blank" is a substitution, not a
	// cell code, and was already handled.
	if rest, ok := strings.CutSuffix(codeText, "blank"); ok {
		code.Blank = true
		spec, ok := inColumn(strings.TrimSpace(rest))
		if !ok {
			return nil
		}
		code.TrainSpec = spec
		return code
	}

	// Bare train spec, possibly with the two-row marker already stripped.
	if codeText == "" && code.TwoRow {
		return code
	}
	spec, ok := inColumn(codeText)
	if !ok {
		return nil
	}
	code.TrainSpec = spec
	return code
}

// linePosition says which line of a (possibly two-line) cell an annotation
// letter is being computed for. All-false for one-line cells.
type linePosition struct {
	secondLine    bool
	arrivalLine   bool
	departureLine bool
}

// annotationLetter returns the single-character receive/discharge annotation
// for a timepoint: "R" receive-only, "D" discharge-only, "*" not a regular
// passenger stop, "F" flag stop, "L" may leave early, " " anything else.
//
// R is suppressed at the first stop and D at the last, where they would state
// the obvious. In two-line cells the letter goes on only one line: R on the
// departure line, D on the arrival line, * and F on the first line.
func annotationLetter(tp StopTime, isFirstStop, isLastStop bool, pos linePosition) string {
	switch {
	case tp.DropOffType == PickupDropOffPolicy_No && tp.PickupType == PickupDropOffPolicy_Yes:
		if !isFirstStop && !pos.arrivalLine {
			return "R"
		}
	case tp.PickupType == PickupDropOffPolicy_No && tp.DropOffType == PickupDropOffPolicy_Yes:
		if !isLastStop && !pos.departureLine {
			return "D"
		}
	case tp.DropOffType == PickupDropOffPolicy_No && tp.PickupType == PickupDropOffPolicy_No:
		if !pos.secondLine {
			return "*"
		}
	case tp.DropOffType == PickupDropOffPolicy_PhoneAgency ||
		tp.DropOffType == PickupDropOffPolicy_CoordinateWithDriver ||
		tp.PickupType == PickupDropOffPolicy_PhoneAgency ||
		tp.PickupType == PickupDropOffPolicy_CoordinateWithDriver:
		if !pos.secondLine {
			return "F"
		}
	case tp.Timepoint == Timepoint_Approximate:
		// The infamous "may leave early" flag. Departure line always.
		if !pos.arrivalLine {
			return "L"
		}
	}
	return " "
}

// timeCellConfig carries everything formatTimeCell needs beyond the timepoint
// itself. Field for field it mirrors the column options and per-cell flags
// computed by the fill loop.
type timeCellConfig struct {
	ZoneDiffHours int
	Use24         bool
	Reverse       bool
	TwoRow        bool
	UseArDp       bool
	UseDayString  bool
	Calendar      []Service // required when UseDayString is set
	IsFirstStop   bool
	IsLastStop    bool
	UseBaggage    bool
	HasBaggage    bool
	UseBus        bool
	IsBus         bool
	NoRD          bool
}

// formatTimeCell produces the text of one train-at-station cell: departure
// and/or arrival time with annotation letter, optional Ar/Dp prefix, optional
// day string, and optional baggage/bus glyphs. The most complex variant looks
// like:
//
//	Ar F 9:59P Daily
//	Dp F10:00P WeFrSu
func formatTimeCell(tp StopTime, cfg timeCellConfig) (string, error) {
	formatOne := func(timestr string) (ExplodedTime, string, error) {
		if timestr == "" {
			// Stops with no specified time exist (VIA Winnipeg-Churchill).
			return ExplodedTime{}, "---", nil
		}
		exploded, err := ExplodeTime(timestr, cfg.ZoneDiffHours)
		if err != nil {
			return ExplodedTime{}, "", err
		}
		return exploded, FormatTimeShort(exploded, cfg.Use24), nil
	}
	departure, departureStr, err := formatOne(tp.DepartureTime)
	if err != nil {
		return "", err
	}
	arrival, arrivalStr, err := formatOne(tp.ArrivalTime)
	if err != nil {
		return "", err
	}

	dayStringFor := func(t ExplodedTime, timestr string) (string, error) {
		if !cfg.UseDayString || timestr == "" {
			return "", nil
		}
		ds, err := DayStringFromCalendar(cfg.Calendar, t.Day)
		if err != nil {
			return "", err
		}
		// The day string is the only variable-width field; it goes last.
		return " " + ds, nil
	}
	departureDays, err := dayStringFor(departure, tp.DepartureTime)
	if err != nil {
		return "", err
	}
	arrivalDays, err := dayStringFor(arrival, tp.ArrivalTime)
	if err != nil {
		return "", err
	}

	baggageStr := ""
	if cfg.UseBaggage {
		// Reserve the column even without baggage, for alignment.
		baggageStr = " "
		if cfg.HasBaggage {
			baggageStr = baggageGlyph
		}
	}
	busStr := ""
	if cfg.UseBus {
		busStr = " "
		if cfg.IsBus {
			busStr = busGlyph
		}
	}

	arStr, dpStr, ardpSpacer := "", "", ""
	if cfg.UseArDp {
		arStr, dpStr, ardpSpacer = "Ar ", "Dp ", "   "
	}

	receiveOnly := cfg.IsFirstStop ||
		(tp.DropOffType == PickupDropOffPolicy_No && tp.PickupType == PickupDropOffPolicy_Yes)
	dischargeOnly := cfg.IsLastStop ||
		(tp.PickupType == PickupDropOffPolicy_No && tp.DropOffType == PickupDropOffPolicy_Yes)

	rd := func(pos linePosition) string {
		if cfg.NoRD {
			return ""
		}
		return annotationLetter(tp, cfg.IsFirstStop, cfg.IsLastStop, pos)
	}

	if !cfg.TwoRow {
		ardp := ardpSpacer
		if cfg.IsFirstStop {
			ardp = dpStr
		} else if cfg.IsLastStop {
			ardp = arStr
		}
		timeStr := departureStr + departureDays
		if dischargeOnly {
			timeStr = arrivalStr + arrivalDays
		}
		return ardp + rd(linePosition{}) + timeStr + baggageStr + busStr, nil
	}

	// Two-row cell. Glyphs go on whichever line is printed first.
	noDwell := tp.DepartureTime == tp.ArrivalTime
	blankBaggage, blankBus := baggageStr, busStr
	if cfg.UseBaggage {
		blankBaggage = " "
	}
	if cfg.UseBus {
		blankBus = " "
	}
	arrivalBaggage, departureBaggage := blankBaggage, blankBaggage
	arrivalBus, departureBus := blankBus, blankBus
	onDepartureLine := receiveOnly || (noDwell && !dischargeOnly) || cfg.Reverse
	if onDepartureLine {
		departureBaggage, departureBus = baggageStr, busStr
	} else {
		arrivalBaggage, arrivalBus = baggageStr, busStr
	}
	blankTime := strings.Repeat(" ", len([]rune(departureStr)))
	blankRD := " "
	if cfg.NoRD {
		blankRD = ""
	}

	var arrivalLine string
	switch {
	case cfg.IsFirstStop:
		// The full Ar/Dp pair is elsewhere on the page; just do the Dp line.
	case receiveOnly || (noDwell && !dischargeOnly):
		arrivalLine = arStr + blankRD + blankTime + blankBaggage + blankBus
	default:
		pos := linePosition{secondLine: cfg.Reverse, arrivalLine: true}
		arrivalLine = arStr + rd(pos) + arrivalStr + arrivalDays + arrivalBaggage + arrivalBus
	}

	var departureLine string
	switch {
	case cfg.IsLastStop:
	case dischargeOnly:
		departureLine = dpStr + blankRD + blankTime + blankBaggage + blankBus
	default:
		pos := linePosition{secondLine: !cfg.Reverse, departureLine: true}
		departureLine = dpStr + rd(pos) + departureStr + departureDays + departureBaggage + departureBus
	}

	lines := []string{arrivalLine, departureLine}
	if cfg.Reverse {
		lines[0], lines[1] = departureLine, arrivalLine
	}
	// First and last stops print a single line; drop the empty one rather
	// than leave a stray newline.
	var printed []string
	for _, line := range lines {
		if line != "" {
			printed = append(printed, line)
		}
	}
	return strings.Join(printed, "\n"), nil
}

// routeTypePrefixes maps GTFS route types to the label above the number in a
// time-column header. Amtrak only uses Train and Bus, but the rest cost
// nothing.
var routeTypePrefixes = map[RouteType]string{
	RouteType_Tram:       "Tram #",
	RouteType_Rail:       "Train #",
	RouteType_Bus:        "Bus #",
	RouteType_Ferry:      "Ferry #",
	RouteType_CableTram:  "Cable Car #",
	RouteType_AerialLift: "Gondola #",
	RouteType_Funicular:  "Funicular #",
	RouteType_TrolleyBus: "Trolleybus #",
	RouteType_Monorail:   "Monorail Train #",
}

// TimeColumnHeader builds the header text for a column of times: a
// route-type label plus the train number(s). Specs marked noheader are
// selected for lookups but left out of the header; it is fine for that to
// leave the header empty.
//
// Stacked layout (the default) puts each number under its own label,
// newline-separated. The side-by-side layout slash-joins the numbers under
// one combined label; it survives for a couple of legacy timetables whose
// columns would otherwise be too wide.
func TimeColumnHeader(specs []TrainSpec, routeOf func(TrainSpec) (Route, error), sideBySide bool) (string, error) {
	if len(specs) == 0 {
		return "", specErrorf("time column header requires at least one train spec")
	}
	var shown []TrainSpec
	for _, spec := range specs {
		if !spec.NoHeader {
			shown = append(shown, spec)
		}
	}
	if len(shown) == 0 {
		return "", nil
	}

	if sideBySide {
		var numbers []string
		var routeTypes []RouteType
		for _, spec := range shown {
			route, err := routeOf(spec)
			if err != nil {
				return "", err
			}
			numbers = append(numbers, spec.Number)
			routeTypes = append(routeTypes, route.Type)
		}
		return sideBySidePrefix(routeTypes) + "\n" + strings.Join(numbers, " / "), nil
	}

	var parts []string
	for _, spec := range shown {
		route, err := routeOf(spec)
		if err != nil {
			return "", err
		}
		prefix, ok := routeTypePrefixes[route.Type]
		if !ok {
			prefix = "Trip #"
		}
		parts = append(parts, prefix+"\n"+spec.Number)
	}
	return strings.Join(parts, "\n"), nil
}

func sideBySidePrefix(routeTypes []RouteType) string {
	trains, buses, others := 0, 0, 0
	for _, rt := range routeTypes {
		switch rt {
		case RouteType_Rail:
			trains++
		case RouteType_Bus:
			buses++
		default:
			others++
		}
	}
	switch {
	case others > 0:
		return "Trip #s"
	case trains > 0 && buses > 0:
		if len(routeTypes) == 2 && routeTypes[0] == RouteType_Bus {
			return "Bus/Train #s"
		}
		return "Train/Bus #s"
	case buses > 0:
		if buses == 1 {
			return "Bus #"
		}
		return "Bus #s"
	case trains == 1:
		return "Train #"
	}
	return "Train #s"
}

// Headers for the special columns.
const (
	stationColumnHeader  = "Station"
	servicesColumnHeader = "Services"
	accessColumnHeader   = "Access"
	timezoneColumnHeader = "Time Zone"
	mileColumnHeader     = "Mile"
)

// UpdownLabel is the "Read Up"/"Read Down" subheader driven by the column's
// reverse option.
func UpdownLabel(reverse bool) string {
	if reverse {
		return "Read Up"
	}
	return "Read Down"
}

// originDestinationSpacer keeps an origin/destination row from visually
// collapsing on pages where no column has anything to say in it.
const originDestinationSpacer = " "
