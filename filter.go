package timetable

import "github.com/transitkit/timetable/constants"

// Filter operations. Each returns a new, structurally independent Feed and
// never mutates its receiver; filters compose, and applying two filters in
// sequence is equivalent to one filter with the intersected criteria.
//
// Dependent tables are always re-derived in a fixed order so referential
// closure holds after every operation: calendar -> trips (by surviving
// service_ids) -> stop_times (by surviving trip_ids). Empty results are
// valid, not errors.

func copyAgencies(in []Agency) []Agency {
	out := make([]Agency, len(in))
	copy(out, in)
	return out
}

func copyStops(in []Stop) []Stop {
	out := make([]Stop, len(in))
	copy(out, in)
	return out
}

func copyRoutes(in []Route) []Route {
	out := make([]Route, len(in))
	copy(out, in)
	return out
}

func filterCalendar(in []Service, keep func(Service) bool) []Service {
	out := []Service{}
	for _, service := range in {
		if keep(service) {
			out = append(out, service)
		}
	}
	return out
}

func filterTrips(in []Trip, keep func(Trip) bool) []Trip {
	out := []Trip{}
	for _, trip := range in {
		if keep(trip) {
			out = append(out, trip)
		}
	}
	return out
}

func filterStopTimes(in []StopTime, keep func(StopTime) bool) []StopTime {
	out := []StopTime{}
	for _, stopTime := range in {
		if keep(stopTime) {
			out = append(out, stopTime)
		}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func serviceIdSet(calendar []Service) map[string]bool {
	set := make(map[string]bool, len(calendar))
	for _, service := range calendar {
		set[service.Id] = true
	}
	return set
}

func tripIdSet(trips []Trip) map[string]bool {
	set := make(map[string]bool, len(trips))
	for _, trip := range trips {
		set[trip.Id] = true
	}
	return set
}

// deriveFromCalendar builds a new Feed from a filtered calendar, narrowing
// trips and stop_times to match. This is the canonical dependency order.
func (f *Feed) deriveFromCalendar(calendar []Service) *Feed {
	serviceIds := serviceIdSet(calendar)
	trips := filterTrips(f.Trips, func(t Trip) bool { return serviceIds[t.ServiceId] })
	tripIds := tripIdSet(trips)
	return &Feed{
		Agencies:  copyAgencies(f.Agencies),
		Stops:     copyStops(f.Stops),
		Routes:    copyRoutes(f.Routes),
		Trips:     trips,
		Calendar:  calendar,
		StopTimes: filterStopTimes(f.StopTimes, func(st StopTime) bool { return tripIds[st.TripId] }),
	}
}

// deriveFromTrips builds a new Feed from a filtered trips table, narrowing
// the calendar and stop_times to match.
func (f *Feed) deriveFromTrips(trips []Trip) *Feed {
	tripIds := tripIdSet(trips)
	serviceIds := make(map[string]bool, len(trips))
	for _, trip := range trips {
		serviceIds[trip.ServiceId] = true
	}
	return &Feed{
		Agencies:  copyAgencies(f.Agencies),
		Stops:     copyStops(f.Stops),
		Routes:    copyRoutes(f.Routes),
		Trips:     trips,
		Calendar:  filterCalendar(f.Calendar, func(s Service) bool { return serviceIds[s.Id] }),
		StopTimes: filterStopTimes(f.StopTimes, func(st StopTime) bool { return tripIds[st.TripId] }),
	}
}

// FilterByDates narrows the feed to services whose validity range intersects
// [firstDate, lastDate]. Dates must be zero-padded YYYYMMDD strings; the
// comparison is lexical, which is chronological for that format.
//
// Used with firstDate == lastDate to reduce to a single reference date, which
// nearly everything downstream requires.
func (f *Feed) FilterByDates(firstDate, lastDate string) *Feed {
	// The calendar must stop on or after the first date of the period, and
	// start on or before the last date.
	return f.deriveFromCalendar(filterCalendar(f.Calendar, func(s Service) bool {
		return s.EndDate >= firstDate && s.StartDate <= lastDate
	}))
}

// FilterByDate narrows the feed to services effective on a single date.
func (f *Feed) FilterByDate(date string) *Feed {
	return f.FilterByDates(date, date)
}

// FilterByDayOfWeek narrows the feed to services running on the named
// lowercase GTFS day. Needed because certain trains keep the same number but
// run different schedules on weekends vs weekdays.
func (f *Feed) FilterByDayOfWeek(day string) (*Feed, error) {
	if !isGTFSDay(day) {
		return nil, specErrorf("expected a GTFS day name, got %q", day)
	}
	return f.deriveFromCalendar(filterCalendar(f.Calendar, func(s Service) bool {
		return s.RunsOn(day)
	})), nil
}

// FilterByDaysOfWeek narrows the feed to services running on at least one of
// the named days.
func (f *Feed) FilterByDaysOfWeek(days []string) (*Feed, error) {
	for _, day := range days {
		if !isGTFSDay(day) {
			return nil, specErrorf("expected a GTFS day name, got %q", day)
		}
	}
	return f.deriveFromCalendar(filterCalendar(f.Calendar, func(s Service) bool {
		matches := 0
		for _, day := range days {
			if s.RunsOn(day) {
				matches++
			}
		}
		return matches >= 1
	})), nil
}

// FilterByRouteIds narrows the feed to trips on the given routes. The routes
// table itself is narrowed too.
func (f *Feed) FilterByRouteIds(routeIds []string) *Feed {
	routeIdSet := toSet(routeIds)
	newFeed := f.deriveFromTrips(filterTrips(f.Trips, func(t Trip) bool {
		return routeIdSet[t.RouteId]
	}))
	newFeed.Routes = filterRoutes(newFeed.Routes, func(r Route) bool { return routeIdSet[r.Id] })
	return newFeed
}

func filterRoutes(in []Route, keep func(Route) bool) []Route {
	out := []Route{}
	for _, route := range in {
		if keep(route) {
			out = append(out, route)
		}
	}
	return out
}

// FilterByServiceIds narrows the feed to the given service_ids.
func (f *Feed) FilterByServiceIds(serviceIds []string) *Feed {
	serviceIdSet := toSet(serviceIds)
	return f.deriveFromCalendar(filterCalendar(f.Calendar, func(s Service) bool {
		return serviceIdSet[s.Id]
	}))
}

// FilterOutServiceIds removes known-bad service_ids, a hand-maintained
// data-quality workaround for feeds with broken calendars.
func (f *Feed) FilterOutServiceIds(badServiceIds []string) *Feed {
	badSet := toSet(badServiceIds)
	return f.deriveFromCalendar(filterCalendar(f.Calendar, func(s Service) bool {
		return !badSet[s.Id]
	}))
}

// FilterOutSingleDayServices removes services effective for exactly one day.
// Some feeds list one-day calendars which overlap the regular calendars;
// they are never what a printed timetable wants, so brute-force them out.
func (f *Feed) FilterOutSingleDayServices() *Feed {
	return f.deriveFromCalendar(filterCalendar(f.Calendar, func(s Service) bool {
		return s.StartDate != s.EndDate
	}))
}

// FilterToSingleDayServices keeps only services effective for exactly one
// day. The complement of FilterOutSingleDayServices, useful for inspecting
// individual dates of odd service.
func (f *Feed) FilterToSingleDayServices() *Feed {
	return f.deriveFromCalendar(filterCalendar(f.Calendar, func(s Service) bool {
		return s.StartDate == s.EndDate
	}))
}

// FilterByTripShortNames narrows the feed to trips with the given train or
// bus numbers. Often used with a one-element list to isolate a single trip.
func (f *Feed) FilterByTripShortNames(trainNumbers []string) *Feed {
	trainNumberSet := toSet(trainNumbers)
	return f.deriveFromTrips(filterTrips(f.Trips, func(t Trip) bool {
		return trainNumberSet[t.ShortName]
	}))
}

// FilterByTripIds narrows the feed to the given trip_ids.
func (f *Feed) FilterByTripIds(tripIds []string) *Feed {
	tripIdSet := toSet(tripIds)
	return f.deriveFromTrips(filterTrips(f.Trips, func(t Trip) bool {
		return tripIdSet[t.Id]
	}))
}

func isGTFSDay(day string) bool {
	for _, d := range constants.GTFSDays {
		if d == day {
			return true
		}
	}
	return false
}

// SingleTrip returns the feed's one trip, or an error wrapping ErrNoTrip or
// ErrTooManyTrips. Used to check that the trips table has been reduced
// enough, but not too much.
func (f *Feed) SingleTrip() (Trip, error) {
	switch len(f.Trips) {
	case 0:
		return Trip{}, feedErrorf(ErrNoTrip, "expected single trip: no trips in filtered trips table")
	case 1:
		return f.Trips[0], nil
	}
	return Trip{}, feedErrorf(ErrTooManyTrips, "expected single trip: %d trips in filtered trips table", len(f.Trips))
}

// TimepointFor returns the stop_times row for (tripId, stopId). A trip not
// serving the stop returns (nil, nil): it is the single most common per-cell
// outcome, not an error. A trip serving the stop twice is a data integrity
// error wrapping ErrStopsTwice.
func (f *Feed) TimepointFor(tripId, stopId string) (*StopTime, error) {
	var found *StopTime
	for i := range f.StopTimes {
		st := &f.StopTimes[i]
		if st.TripId != tripId || st.StopId != stopId {
			continue
		}
		if found != nil {
			return nil, feedErrorf(ErrStopsTwice, "trip %s stops at stop %s more than once", tripId, stopId)
		}
		found = st
	}
	if found == nil {
		return nil, nil
	}
	stopTime := *found
	return &stopTime, nil
}

// DwellSecs returns the dwell time in seconds for a trip at a stop. A trip
// not serving the stop dwells zero seconds, as do receive-only and
// discharge-only stops, where dwell is meaningless.
func (f *Feed) DwellSecs(tripId, stopId string) (int, error) {
	timepoint, err := f.TimepointFor(tripId, stopId)
	if err != nil {
		return 0, err
	}
	if timepoint == nil {
		return 0, nil
	}
	return DwellSeconds(*timepoint)
}

// ServiceDateRange returns the validity start and end dates for a service.
func (f *Feed) ServiceDateRange(serviceId string) (string, string, error) {
	service, err := f.singleService(serviceId)
	if err != nil {
		return "", "", err
	}
	return service.StartDate, service.EndDate, nil
}

// singleService returns the calendar row for a service_id, requiring exactly
// one. Zero or duplicate rows indicate untrustworthy source data.
func (f *Feed) singleService(serviceId string) (Service, error) {
	var found *Service
	for i := range f.Calendar {
		if f.Calendar[i].Id != serviceId {
			continue
		}
		if found != nil {
			return Service{}, feedErrorf(ErrBadCalendar, "duplicate calendar rows for service %s", serviceId)
		}
		found = &f.Calendar[i]
	}
	if found == nil {
		return Service{}, feedErrorf(ErrBadCalendar, "no calendar row for service %s", serviceId)
	}
	return *found, nil
}
