package timetable

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/transitkit/timetable/constants"
	"github.com/transitkit/timetable/warnings"
)

// A train spec is the token a timetable author puts in a column header: a
// trip_short_name, optionally qualified by a lowercase day of the week (for
// trains whose schedule differs by day), optionally suffixed with "noheader"
// (select the train for cell lookups but leave it out of the printed header).
// Several specs can share a column, slash-separated.

type TrainSpec struct {
	Number   string // the trip_short_name, e.g. "59"
	Day      string // "" or a lowercase GTFS day, e.g. "monday"
	NoHeader bool
}

// ParseTrainSpec decodes a single train spec token.
func ParseTrainSpec(raw string) TrainSpec {
	spec := TrainSpec{}
	token := strings.TrimSpace(raw)
	if rest, ok := strings.CutSuffix(token, "noheader"); ok {
		spec.NoHeader = true
		token = strings.TrimSpace(rest)
	}
	for _, day := range constants.GTFSDays {
		if rest, ok := strings.CutSuffix(token, " "+day); ok {
			// Only remove one suffix.
			spec.Day = day
			token = strings.TrimSpace(rest)
			break
		}
	}
	spec.Number = token
	return spec
}

// Key returns the lookup form of the spec: "59" or "59 monday". The noheader
// marker never participates in lookups.
func (s TrainSpec) Key() string {
	if s.Day == "" {
		return s.Number
	}
	return s.Number + " " + s.Day
}

// SplitTrainSpecs decodes a slash-separated column header like "59 / 174
// monday / 22 noheader" into its train specs, in order. Order matters: the
// fill engine prefers the first train's time at each station and falls back
// to later trains only where the first does not stop.
func SplitTrainSpecs(columnKey string) []TrainSpec {
	parts := strings.Split(columnKey, "/")
	specs := make([]TrainSpec, 0, len(parts))
	for _, part := range parts {
		specs = append(specs, ParseTrainSpec(part))
	}
	return specs
}

// FlattenTrainSpecs collects the distinct train specs appearing in a list of
// column headers, skipping reserved column names. The noheader marker is
// dropped; it is irrelevant in flattened form.
func FlattenTrainSpecs(columnKeys []string) []TrainSpec {
	seen := map[string]bool{}
	var flattened []TrainSpec
	for _, columnKey := range columnKeys {
		if isSpecialColumnName(columnKey) {
			continue
		}
		for _, spec := range SplitTrainSpecs(columnKey) {
			spec.NoHeader = false
			if seen[spec.Key()] {
				continue
			}
			seen[spec.Key()] = true
			flattened = append(flattened, spec)
		}
	}
	return flattened
}

// MakeTripIdToTrainNumberMap returns a map from trip_id to trip_short_name.
// trip_id is unique, so this is total and never ambiguous; the values may
// repeat and that is fine.
func MakeTripIdToTrainNumberMap(feed *Feed) map[string]string {
	m := make(map[string]string, len(feed.Trips))
	for _, trip := range feed.Trips {
		m[trip.Id] = trip.ShortName
	}
	return m
}

// MakeTrainNumberToTripIdMap returns a map from trip_short_name to trip_id.
//
// The feed should be filtered down to where this is unique. Where it is not,
// the last trip wins and a DuplicateTrainNumber warning is returned. This is
// an accepted defect tolerance: some feeds contain completely identical
// duplicate entries, so it usually does not matter which one is kept.
func MakeTrainNumberToTripIdMap(feed *Feed) (map[string]string, []warnings.Warning) {
	m := make(map[string]string, len(feed.Trips))
	var warns []warnings.Warning
	for _, trip := range feed.Trips {
		if previous, ok := m[trip.ShortName]; ok {
			warns = append(warns, warnings.DuplicateTrainNumber{
				TrainNumber:   trip.ShortName,
				KeptTripId:    trip.Id,
				DroppedTripId: previous,
			})
		}
		m[trip.ShortName] = trip.Id
	}
	return m, warns
}

// MakeTrainNumberAndDayToTripIdMap returns a map from "trip_short_name day"
// (e.g. "91 monday") to trip_id, covering all seven days. Designed for
// numbers that run different schedules on different days of the week --
// annoying, and bad practice, but allowed by GTFS. Same last-write-wins
// collision policy as MakeTrainNumberToTripIdMap, scoped per day.
func MakeTrainNumberAndDayToTripIdMap(feed *Feed) (map[string]string, []warnings.Warning) {
	total := map[string]string{}
	var warns []warnings.Warning
	for _, day := range constants.GTFSDays {
		dayFeed, err := feed.FilterByDayOfWeek(day)
		if err != nil {
			// Days come from constants.GTFSDays; cannot happen.
			panic(err)
		}
		for _, trip := range dayFeed.Trips {
			key := trip.ShortName + " " + day
			if previous, ok := total[key]; ok {
				warns = append(warns, warnings.DuplicateTrainNumber{
					TrainNumber:   trip.ShortName,
					Day:           day,
					KeptTripId:    trip.Id,
					DroppedTripId: previous,
				})
			}
			total[key] = trip.Id
		}
	}
	return total, warns
}

// FindDuplicateTrainNumbers returns the trip_short_names which map to more
// than one trip_id in the feed, sorted. On an unfiltered feed nearly every
// number shows up; after reducing to a single date the survivors are either
// day-varying schedules (use a day qualifier in the spec) or genuine feed
// defects.
func FindDuplicateTrainNumbers(feed *Feed) []string {
	seen := map[string]bool{}
	dupes := map[string]bool{}
	for _, trip := range feed.Trips {
		if seen[trip.ShortName] {
			dupes[trip.ShortName] = true
		}
		seen[trip.ShortName] = true
	}
	result := make([]string, 0, len(dupes))
	for trainNumber := range dupes {
		result = append(result, trainNumber)
	}
	sort.Strings(result)
	return result
}

// trainSpecIndex resolves train specs to trips. Built once per fill run and
// reused for every cell: the naive per-cell lookup dominated the runtime of
// earlier implementations.
type trainSpecIndex struct {
	feed      *Feed
	keyToTrip map[string]string
	tripById  map[string]Trip
	tripsById map[string][]Trip // for the too-many-rows check
	firstStop map[string]string // spec key -> first station code
	lastStop  map[string]string // spec key -> last station code
	warnings  []warnings.Warning
}

// newTrainSpecIndex builds the resolution maps for the given specs over a
// feed already filtered to a single reference date. Day-qualified entries
// take precedence over unqualified ones with the same key (they cannot
// actually collide, since the qualified keys embed a day suffix).
//
// A spec whose key matched more than one trip is an error unless
// allowDuplicates is set, in which case the last trip is kept and the
// collision is only warned about.
func newTrainSpecIndex(feed *Feed, specs []TrainSpec, ag AgencyCapabilities, allowDuplicates bool, logger *slog.Logger) (*trainSpecIndex, error) {
	plain, plainWarns := MakeTrainNumberToTripIdMap(feed)
	byDay, dayWarns := MakeTrainNumberAndDayToTripIdMap(feed)

	idx := &trainSpecIndex{
		feed:      feed,
		keyToTrip: map[string]string{},
		tripById:  map[string]Trip{},
		tripsById: map[string][]Trip{},
		firstStop: map[string]string{},
		lastStop:  map[string]string{},
	}
	idx.warnings = append(idx.warnings, plainWarns...)
	idx.warnings = append(idx.warnings, dayWarns...)
	for _, w := range idx.warnings {
		logger.Warn("ambiguous train number", "detail", w.Error())
	}

	collisions := map[string]bool{}
	for _, w := range idx.warnings {
		if dupe, ok := w.(warnings.DuplicateTrainNumber); ok {
			key := dupe.TrainNumber
			if dupe.Day != "" {
				key += " " + dupe.Day
			}
			collisions[key] = true
		}
	}

	for _, trip := range feed.Trips {
		idx.tripsById[trip.Id] = append(idx.tripsById[trip.Id], trip)
	}

	for _, spec := range specs {
		key := spec.Key()
		tripId, ok := byDay[key]
		if !ok {
			tripId, ok = plain[key]
		}
		if !ok {
			return nil, specErrorf("no trip for train spec %q on the reference date", key)
		}
		if collisions[key] && !allowDuplicates {
			return nil, feedErrorf(ErrTooManyTrips, "train spec %q matches more than one trip on the reference date; qualify it with a day or set allow_duplicate_trips", key)
		}
		idx.keyToTrip[key] = tripId

		rows := idx.tripsById[tripId]
		if len(rows) == 0 {
			return nil, feedErrorf(ErrNoTrip, "trip %s vanished while resolving train spec %q", tripId, key)
		}
		if len(rows) > 1 {
			return nil, feedErrorf(ErrTooManyTrips, "%d trips share trip_id %s while resolving train spec %q", len(rows), tripId, key)
		}
		idx.tripById[tripId] = rows[0]

		stations, err := StationsFromTrip(feed, tripId, ag)
		if err != nil {
			return nil, err
		}
		if len(stations) > 0 {
			idx.firstStop[key] = stations[0]
			idx.lastStop[key] = stations[len(stations)-1]
		}
	}
	return idx, nil
}

// Trip resolves a train spec to its trip record.
func (idx *trainSpecIndex) Trip(spec TrainSpec) (Trip, error) {
	tripId, ok := idx.keyToTrip[spec.Key()]
	if !ok {
		return Trip{}, specErrorf("no trip for train spec %q", spec.Key())
	}
	return idx.tripById[tripId], nil
}

// Route resolves a train spec to its route record.
func (idx *trainSpecIndex) Route(spec TrainSpec) (Route, error) {
	trip, err := idx.Trip(spec)
	if err != nil {
		return Route{}, err
	}
	for _, route := range idx.feed.Routes {
		if route.Id == trip.RouteId {
			return route, nil
		}
	}
	return Route{}, feedErrorf(ErrNoTrip, "missing route %s for train spec %q", trip.RouteId, spec.Key())
}

// StationsFromTrip returns the trip's station codes in stop_sequence order.
// stop_sequence, not departure time, is authoritative for station ordering:
// clocks are unreliable near midnight rollovers, the sequence is not.
func StationsFromTrip(feed *Feed, tripId string, ag AgencyCapabilities) ([]string, error) {
	var stopTimes []StopTime
	for _, st := range feed.StopTimes {
		if st.TripId == tripId {
			stopTimes = append(stopTimes, st)
		}
	}
	sort.SliceStable(stopTimes, func(i, j int) bool {
		return stopTimes[i].StopSequence < stopTimes[j].StopSequence
	})
	stations := make([]string, 0, len(stopTimes))
	for _, st := range stopTimes {
		stations = append(stations, ag.StopIdToStopCode(st.StopId))
	}
	return stations, nil
}

// StationsFromTrainNumber returns the ordered station codes for a train
// number, on a feed already filtered to one day. The trip must be unique.
func StationsFromTrainNumber(feed *Feed, trainNumber string, ag AgencyCapabilities) ([]string, error) {
	trip, err := feed.FilterByTripShortNames([]string{trainNumber}).SingleTrip()
	if err != nil {
		return nil, err
	}
	return StationsFromTrip(feed, trip.Id, ag)
}
