package timetable

import "strings"

// StationNameMode selects the presentation form of a station name.
type StationNameMode int32

const (
	StationNameMode_SingleLine StationNameMode = 0
	StationNameMode_Multiline  StationNameMode = 1
	StationNameMode_HTML       StationNameMode = 2
)

func (m StationNameMode) String() string {
	switch m {
	case StationNameMode_SingleLine:
		return "SINGLE_LINE"
	case StationNameMode_Multiline:
		return "MULTILINE"
	case StationNameMode_HTML:
		return "HTML"
	}
	return "UNKNOWN"
}

// AgencyCapabilities is everything the fill engine needs to know about an
// agency beyond what the GTFS feed itself carries: display names, exception
// data, and per-train classification. One implementation is active for the
// duration of a run and is passed down explicitly; there is no ambient
// "current agency".
//
// Hybrid agencies (a route run jointly by two operators) compose two
// implementations in an explicit wrapper rather than anything cleverer.
type AgencyCapabilities interface {
	// PrettyStationName renders the display form of a station. major selects
	// the emphasized form used for important stations.
	PrettyStationName(code string, major bool, mode StationNameMode) string
	// RouteDisplayName returns the human name of a route, e.g. "Empire
	// Builder", falling back to feed data when no hand-maintained name exists.
	RouteDisplayName(feed *Feed, routeId string) string

	StationHasCheckedBaggage(code string) bool
	TrainHasCheckedBaggage(trainNumber string) bool
	StationHasAccessiblePlatform(code string) bool
	StationHasInaccessiblePlatform(code string) bool

	IsConnectingService(trainNumber string) bool
	IsSleeperTrain(trainNumber string) bool
	IsHighSpeedTrain(trainNumber string) bool
	IsSpeciallyColoredTrain(trainNumber string) bool
	IsStandardMajorStation(code string) bool

	// StopCodeToStopId and StopIdToStopCode translate between the short codes
	// timetable authors write ("CHI") and GTFS stop_ids. Identity for some
	// agencies, a translation table for others.
	StopCodeToStopId(code string) string
	StopIdToStopCode(stopId string) string

	// BadServiceIds lists service_ids known to carry garbage calendars in
	// this agency's feeds, to be filtered out before any other processing.
	BadServiceIds() []string
}

// GenericAgency implements AgencyCapabilities directly from feed data with no
// exception tables. Suitable for feeds nobody has hand-curated yet, and as
// the embedded fallback for agencies that only override a few behaviors.
type GenericAgency struct {
	codeToId map[string]string
	idToCode map[string]string
	names    map[string]string // stop code -> stop_name
}

// NewGenericAgency indexes the feed's stops. Stops without a stop_code fall
// back to using the stop_id as their code.
func NewGenericAgency(feed *Feed) *GenericAgency {
	ag := &GenericAgency{
		codeToId: map[string]string{},
		idToCode: map[string]string{},
		names:    map[string]string{},
	}
	for _, stop := range feed.Stops {
		code := stop.Code
		if code == "" {
			code = stop.Id
		}
		ag.codeToId[code] = stop.Id
		ag.idToCode[stop.Id] = code
		ag.names[code] = stop.Name
	}
	return ag
}

func (ag *GenericAgency) PrettyStationName(code string, major bool, mode StationNameMode) string {
	name := ag.names[code]
	if name == "" {
		name = code
	}
	if major {
		name = strings.ToUpper(name)
	}
	switch mode {
	case StationNameMode_Multiline:
		return name + "\n(" + code + ")"
	case StationNameMode_HTML:
		return "<span class=\"station-name\">" + name + "</span> (" + code + ")"
	}
	return name + " (" + code + ")"
}

func (ag *GenericAgency) RouteDisplayName(feed *Feed, routeId string) string {
	for _, route := range feed.Routes {
		if route.Id != routeId {
			continue
		}
		if route.LongName != "" {
			return route.LongName
		}
		return route.ShortName
	}
	return routeId
}

func (ag *GenericAgency) StationHasCheckedBaggage(code string) bool { return false }
func (ag *GenericAgency) TrainHasCheckedBaggage(trainNumber string) bool { return false }
func (ag *GenericAgency) StationHasAccessiblePlatform(code string) bool { return false }
func (ag *GenericAgency) StationHasInaccessiblePlatform(code string) bool { return false }
func (ag *GenericAgency) IsConnectingService(trainNumber string) bool { return false }
func (ag *GenericAgency) IsSleeperTrain(trainNumber string) bool { return false }
func (ag *GenericAgency) IsHighSpeedTrain(trainNumber string) bool { return false }
func (ag *GenericAgency) IsSpeciallyColoredTrain(trainNumber string) bool { return false }
func (ag *GenericAgency) IsStandardMajorStation(code string) bool { return false }
func (ag *GenericAgency) BadServiceIds() []string { return nil }

func (ag *GenericAgency) StopCodeToStopId(code string) string {
	if id, ok := ag.codeToId[code]; ok {
		return id
	}
	return code
}

func (ag *GenericAgency) StopIdToStopCode(stopId string) string {
	if code, ok := ag.idToCode[stopId]; ok {
		return code
	}
	return stopId
}
