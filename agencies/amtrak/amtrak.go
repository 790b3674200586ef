// Package amtrak implements the agency capabilities for Amtrak, with the
// hand-maintained exception data Amtrak does not publish in machine-readable
// form: sleeper and checked-baggage train tables, the major-station list,
// and known feed defects.
package amtrak

import (
	"strconv"
	"strings"

	"github.com/transitkit/timetable"
)

// Agency is the Amtrak implementation of timetable.AgencyCapabilities.
// Station names and codes come from the feed via the embedded generic
// implementation; classification and exception data are the hand-maintained
// tables in this package.
type Agency struct {
	*timetable.GenericAgency

	// BaggageStations are the stations with checked baggage service,
	// crowdsourced since Amtrak's stations database is not machine-readable.
	// Overridable for when the source data improves.
	BaggageStations map[string]bool

	// BadCalendarServiceIds lists service_ids known to carry garbage
	// calendars in the current feed. Empty when the feed is healthy.
	BadCalendarServiceIds []string
}

func New(feed *timetable.Feed) *Agency {
	return &Agency{
		GenericAgency:   timetable.NewGenericAgency(feed),
		BaggageStations: defaultBaggageStations(),
	}
}

// IsConnectingService reports non-Amtrak services sharing the feed. Amtrak's
// own train numbers are all digits below 3000; anything else is a connecting
// operator (Hartford Line letters, high-numbered Thruway and partner runs).
func (ag *Agency) IsConnectingService(trainNumber string) bool {
	n, err := strconv.Atoi(trainNumber)
	if err != nil {
		return true
	}
	return n >= 3000
}

func (ag *Agency) IsSleeperTrain(trainNumber string) bool {
	return sleeperTrains[trainNumber]
}

// IsHighSpeedTrain counts only the Acela, numbered 2100-2299, copying the
// old printed-timetable style.
func (ag *Agency) IsHighSpeedTrain(trainNumber string) bool {
	n, err := strconv.Atoi(trainNumber)
	if err != nil {
		return false
	}
	return n >= 2100 && n <= 2299
}

func (ag *Agency) IsSpeciallyColoredTrain(trainNumber string) bool {
	return false
}

func (ag *Agency) IsStandardMajorStation(code string) bool {
	return majorStations[code]
}

func (ag *Agency) TrainHasCheckedBaggage(trainNumber string) bool {
	return checkedBaggageTrains[trainNumber]
}

func (ag *Agency) StationHasCheckedBaggage(code string) bool {
	return ag.BaggageStations[code]
}

// Amtrak's GTFS uses the station code as the stop_id, so the translation is
// the identity in both directions.
func (ag *Agency) StopCodeToStopId(code string) string   { return code }
func (ag *Agency) StopIdToStopCode(stopId string) string { return stopId }

func (ag *Agency) BadServiceIds() []string {
	return ag.BadCalendarServiceIds
}

// RouteDisplayName prefers the feed's route_long_name but cleans up the
// generic Thruway name, which is useless in a column header.
func (ag *Agency) RouteDisplayName(feed *timetable.Feed, routeId string) string {
	name := ag.GenericAgency.RouteDisplayName(feed, routeId)
	if name == "Amtrak Thruway Connecting Service" {
		return "Thruway"
	}
	return name
}

// sleeperTrains is the set of trains carrying sleeper cars.
var sleeperTrains = toSet(
	"1", "2", // Sunset Limited
	"21", "22", "421", "422", // Texas Eagle
	"3", "4", // Southwest Chief
	"5", "6", // California Zephyr
	"7", "8", "27", "28", // Empire Builder
	"11", "14", // Coast Starlight
	"19", "20", // Crescent
	"29", "30", // Capitol Limited
	"48", "49", "448", "449", // Lake Shore Limited
	"50", "51", // Cardinal
	"52", "53", // Auto Train
	"58", "59", // City of New Orleans
	"91", "92", // Silver Star
	"97", "98", // Silver Meteor
)

// checkedBaggageTrains is crowdsourced: Amtrak has no machine-readable way
// to get it. Covers the sleeper trains (except the baggage-car-less 448/449)
// plus the state-supported corridors that carry a baggage car. The corridor
// trains are listed by number range because their numbers churn.
var checkedBaggageTrains = buildCheckedBaggageTrains()

func buildCheckedBaggageTrains() map[string]bool {
	set := map[string]bool{}
	for train := range sleeperTrains {
		set[train] = true
	}
	// Stupid technical issue: 448/449 have no baggage car.
	delete(set, "448")
	delete(set, "449")
	addRange := func(lo, hi int) {
		for n := lo; n <= hi; n++ {
			set[strconv.Itoa(n)] = true
		}
	}
	addRange(560, 599) // Pacific Surfliner, short trains
	addRange(760, 799) // Pacific Surfliner, long trains
	addRange(700, 719) // San Joaquins
	addRange(500, 519) // Cascades
	addRange(320, 349) // Hiawatha
	for _, train := range []string{
		"42", "43", // Pennsylvanian
		"79", "80", // Carolinian
		"73", "74", "75", "76", // Piedmont
		"77", "78", "89", "90", // Palmetto
	} {
		set[train] = true
	}
	return set
}

// majorStations get the bigger, bolder styling in printed output. This
// should really be per-timetable, but one list is a workable start.
var majorStations = toSet(
	// NEC
	"BOS", "NHV", "NYP", "NYG", "PHL", "WAS",
	// Virginia services
	"RVR", "NPN", "NFK", "RNK",
	// Keystone
	"HAR", "PGH",
	// Empire, Maple Leaf, Adirondack
	"ALB", "BFX", "TWO", "MTR",
	// Vermonter, Ethan Allen Express
	"ESX", "SPG", "BTN", "RUD",
	// Carolinian/Piedmont, Crescent
	"RGH", "CLT", "ATL", "BHM", "NOL",
	// Cardinal
	"CVS", "CIN", "IND",
	// Midwest
	"CHI", "CLE", "TOL", "GRR", "PTH", "DET", "PNT", "BTL",
	"CHM", "CDL", "MEM", "JAN", "STL", "KCY", "QCY", "MKE",
	// California
	"SAN", "OSD", "LAX", "SBA", "SLO", "SJC", "OKJ", "SAC", "SKN", "BFD",
	// Empire Builder
	"MSP", "MOT", "HAV", "SPK", "PDX", "SEA",
	// California Zephyr
	"DEN", "SLC", "EMY",
	// Southwest Chief
	"ABQ", "FLG",
	// Texas Eagle, Heartland Flyer, Sunset Limited
	"DAL", "FTW", "OKC", "SAS", "HOS", "ELP", "TUS",
	// Palmetto, Silver Service
	"CHS", "SAV", "JAX", "ORL", "TPA", "MIA",
	// Grand Canyon Railway
	"WMA", "GCN",
)

// defaultBaggageStations are the staffed stations with checked baggage
// service, crowdsourced from Amtrak's stations database.
func defaultBaggageStations() map[string]bool {
	return toSet(
		"BOS", "NYP", "PHL", "WAS", "BAL", "WIL", "RVR", "ALB", "BUF",
		"PGH", "CLT", "RGH", "GRO", "ATL", "BHM", "NOL", "MEM", "JAN",
		"CHI", "CLE", "TOL", "STL", "KCY", "MKE", "MSP", "MOT", "HAV",
		"SPK", "PDX", "SEA", "DEN", "SLC", "EMY", "SAC", "OKJ", "BFD",
		"FNO", "LAX", "SAN", "SBA", "SLO", "SJC", "ABQ", "FLG", "DAL",
		"FTW", "SAS", "HOS", "ELP", "TUS", "LOR", "SDL", "ORL", "TPA",
		"MIA", "JAX", "SAV", "CHS",
	)
}

func toSet(codes ...string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, code := range codes {
		set[strings.TrimSpace(code)] = true
	}
	return set
}
