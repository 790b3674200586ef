// Package timetable converts GTFS schedule data plus a hand-authored timetable
// spec into a fully populated presentation grid.
//
// The package is organized as a pipeline of pure transformations: a Feed is
// parsed once, repeatedly copied-and-narrowed by the filter operations, and
// finally consumed together with a GridSpec by Fill, which produces the output
// Timetable. Nothing in here performs I/O after parse time.
package timetable

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log"
	"strconv"

	"github.com/transitkit/timetable/constants"
	"github.com/transitkit/timetable/csv"
)

// Feed contains the six relational GTFS tables the engine works with.
//
// A Feed is immutable by convention: every filter operation returns a new,
// independent Feed and never mutates its receiver. All cross-table references
// are by ID (no pointers between rows), so copying a table copies everything
// reachable from it.
type Feed struct {
	Agencies  []Agency
	Stops     []Stop
	Routes    []Route
	Trips     []Trip
	Calendar  []Service
	StopTimes []StopTime
}

// Agency corresponds to a single row in the agency.txt file.
type Agency struct {
	Id       string
	Name     string
	Url      string
	Timezone string
}

// Stop corresponds to a single row in the stops.txt file.
type Stop struct {
	Id       string
	Code     string
	Name     string
	Timezone string
}

type RouteType int32

const (
	RouteType_Tram       RouteType = 0
	RouteType_Subway     RouteType = 1
	RouteType_Rail       RouteType = 2
	RouteType_Bus        RouteType = 3
	RouteType_Ferry      RouteType = 4
	RouteType_CableTram  RouteType = 5
	RouteType_AerialLift RouteType = 6
	RouteType_Funicular  RouteType = 7
	RouteType_TrolleyBus RouteType = 11
	RouteType_Monorail   RouteType = 12

	RouteType_Unknown RouteType = 10000
)

func NewRouteType(i int) (RouteType, bool) {
	var t RouteType
	switch i {
	case 0:
		t = RouteType_Tram
	case 1:
		t = RouteType_Subway
	case 2:
		t = RouteType_Rail
	case 3:
		t = RouteType_Bus
	case 4:
		t = RouteType_Ferry
	case 5:
		t = RouteType_CableTram
	case 6:
		t = RouteType_AerialLift
	case 7:
		t = RouteType_Funicular
	case 11:
		t = RouteType_TrolleyBus
	case 12:
		t = RouteType_Monorail
	default:
		return RouteType_Unknown, false
	}
	return t, true
}

func (t RouteType) String() string {
	switch t {
	case RouteType_Tram:
		return "TRAM"
	case RouteType_Subway:
		return "SUBWAY"
	case RouteType_Rail:
		return "RAIL"
	case RouteType_Bus:
		return "BUS"
	case RouteType_Ferry:
		return "FERRY"
	case RouteType_CableTram:
		return "CABLE_TRAM"
	case RouteType_AerialLift:
		return "AERIAL_LIFT"
	case RouteType_Funicular:
		return "FUNICULAR"
	case RouteType_TrolleyBus:
		return "TROLLEY_BUS"
	case RouteType_Monorail:
		return "MONORAIL"
	}
	return "UNKNOWN"
}

// Route corresponds to a single row in the routes.txt file.
type Route struct {
	Id        string
	AgencyId  string
	ShortName string
	LongName  string
	Type      RouteType
	Color     string
}

// Service corresponds to a single row in the calendar.txt file: a weekly
// operating pattern plus a validity date range.
//
// StartDate and EndDate are zero-padded YYYYMMDD strings and are compared
// lexically, which for this format is equivalent to chronological comparison.
type Service struct {
	Id        string
	Days      [7]bool // Monday first, matching constants.GTFSDays
	StartDate string
	EndDate   string
}

// RunsOn reports whether the service operates on the named lowercase GTFS day.
func (s Service) RunsOn(day string) bool {
	for i, d := range constants.GTFSDays {
		if d == day {
			return s.Days[i]
		}
	}
	return false
}

// Trip corresponds to a single row in the trips.txt file.
//
// ShortName is the human train or bus number. It is not guaranteed unique,
// even within a single service day: upstream feeds are known to contain exact
// duplicates. trip_id is the only reliable key.
type Trip struct {
	Id          string
	RouteId     string
	ServiceId   string
	ShortName   string
	Headsign    string
	DirectionId int32
}

type PickupDropOffPolicy int32

const (
	PickupDropOffPolicy_Yes                  PickupDropOffPolicy = 0
	PickupDropOffPolicy_No                   PickupDropOffPolicy = 1
	PickupDropOffPolicy_PhoneAgency          PickupDropOffPolicy = 2
	PickupDropOffPolicy_CoordinateWithDriver PickupDropOffPolicy = 3
)

func NewPickupDropOffPolicy(i int) (PickupDropOffPolicy, bool) {
	var t PickupDropOffPolicy
	switch i {
	case 0:
		t = PickupDropOffPolicy_Yes
	case 1:
		t = PickupDropOffPolicy_No
	case 2:
		t = PickupDropOffPolicy_PhoneAgency
	case 3:
		t = PickupDropOffPolicy_CoordinateWithDriver
	default:
		return PickupDropOffPolicy_Yes, false
	}
	return t, true
}

func (t PickupDropOffPolicy) String() string {
	switch t {
	case PickupDropOffPolicy_Yes:
		return "ALLOWED"
	case PickupDropOffPolicy_No:
		return "NOT_ALLOWED"
	case PickupDropOffPolicy_PhoneAgency:
		return "PHONE_AGENCY"
	case PickupDropOffPolicy_CoordinateWithDriver:
		return "COORDINATE_WITH_DRIVER"
	}
	return "UNKNOWN"
}

type TimepointExactness int32

const (
	Timepoint_Unspecified TimepointExactness = -1
	Timepoint_Approximate TimepointExactness = 0
	Timepoint_Exact       TimepointExactness = 1
)

// StopTime corresponds to a single row in the stop_times.txt file.
//
// ArrivalTime and DepartureTime are raw GTFS HH:MM:SS strings whose hour
// field may exceed 24 for trips running past midnight. They are decoded
// lazily by ExplodeTime so the day offset can be tracked.
type StopTime struct {
	TripId        string
	StopId        string
	StopSequence  int
	ArrivalTime   string
	DepartureTime string
	PickupType    PickupDropOffPolicy
	DropOffType   PickupDropOffPolicy
	Timepoint     TimepointExactness
}

// ParseFeed parses the content as a zipped GTFS static feed.
func ParseFeed(content []byte) (*Feed, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	result := &Feed{}
	fileNameToFile := map[string]*zip.File{}
	for _, file := range reader.File {
		fileNameToFile[file.Name] = file
	}
	for _, table := range []struct {
		fileName constants.FeedFile
		action   func(file *csv.File)
	}{
		{
			constants.AgencyFile,
			func(file *csv.File) {
				result.Agencies = parseAgencies(file)
			},
		},
		{
			constants.StopsFile,
			func(file *csv.File) {
				result.Stops = parseStops(file)
			},
		},
		{
			constants.RoutesFile,
			func(file *csv.File) {
				result.Routes = parseRoutes(file, result.Agencies)
			},
		},
		{
			constants.TripsFile,
			func(file *csv.File) {
				result.Trips = parseTrips(file)
			},
		},
		{
			constants.CalendarFile,
			func(file *csv.File) {
				result.Calendar = parseCalendar(file)
			},
		},
		{
			constants.StopTimesFile,
			func(file *csv.File) {
				result.StopTimes = parseStopTimes(file)
			},
		},
	} {
		file, err := readCsvFile(fileNameToFile, table.fileName)
		if err != nil {
			return nil, err
		}
		table.action(file)
		if err := file.Close(); err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", table.fileName, err)
		}
	}
	return result, nil
}

func readCsvFile(fileNameToFile map[string]*zip.File, fileName constants.FeedFile) (*csv.File, error) {
	zipFile := fileNameToFile[string(fileName)]
	if zipFile == nil {
		return nil, fmt.Errorf("no %q file in GTFS static feed", fileName)
	}
	content, err := zipFile.Open()
	if err != nil {
		return nil, err
	}
	f, err := csv.New(fileName, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", fileName, err)
	}
	return f, nil
}

func parseAgencies(f *csv.File) []Agency {
	idColumn := f.OptionalColumn("agency_id")
	nameColumn := f.RequiredColumn("agency_name")
	urlColumn := f.RequiredColumn("agency_url")
	timezoneColumn := f.RequiredColumn("agency_timezone")
	var agencies []Agency
	for f.NextRow() {
		name := nameColumn.Read()
		agency := Agency{
			// In GTFS static the agency ID can be omitted for single-agency feeds.
			Id:       idColumn.ReadOr(fmt.Sprintf("%s_id", name)),
			Name:     name,
			Url:      urlColumn.Read(),
			Timezone: timezoneColumn.Read(),
		}
		if missingKeys := f.MissingRowKeys(); len(missingKeys) > 0 {
			log.Printf("Skipping agency %+v because of missing keys %s", agency, missingKeys)
			continue
		}
		agencies = append(agencies, agency)
	}
	return agencies
}

func parseStops(f *csv.File) []Stop {
	idColumn := f.RequiredColumn("stop_id")
	codeColumn := f.OptionalColumn("stop_code")
	nameColumn := f.OptionalColumn("stop_name")
	timezoneColumn := f.OptionalColumn("stop_timezone")
	var stops []Stop
	for f.NextRow() {
		stop := Stop{
			Id:       idColumn.Read(),
			Code:     codeColumn.Read(),
			Name:     nameColumn.Read(),
			Timezone: timezoneColumn.Read(),
		}
		if missingKeys := f.MissingRowKeys(); len(missingKeys) > 0 {
			log.Printf("Skipping stop %+v because of missing keys %s", stop, missingKeys)
			continue
		}
		stops = append(stops, stop)
	}
	return stops
}

func parseRoutes(f *csv.File, agencies []Agency) []Route {
	idColumn := f.RequiredColumn("route_id")
	agencyIdColumn := f.OptionalColumn("agency_id")
	shortNameColumn := f.OptionalColumn("route_short_name")
	longNameColumn := f.OptionalColumn("route_long_name")
	typeColumn := f.RequiredColumn("route_type")
	colorColumn := f.OptionalColumn("route_color")
	var routes []Route
	for f.NextRow() {
		agencyId := agencyIdColumn.Read()
		if agencyId == "" && len(agencies) == 1 {
			agencyId = agencies[0].Id
		}
		route := Route{
			Id:        idColumn.Read(),
			AgencyId:  agencyId,
			ShortName: shortNameColumn.Read(),
			LongName:  longNameColumn.Read(),
			Type:      parseRouteType(typeColumn.Read()),
			Color:     colorColumn.ReadOr("FFFFFF"),
		}
		if missingKeys := f.MissingRowKeys(); len(missingKeys) > 0 {
			log.Printf("Skipping route %+v because of missing keys %s", route, missingKeys)
			continue
		}
		routes = append(routes, route)
	}
	return routes
}

func parseRouteType(raw string) RouteType {
	i, err := strconv.Atoi(raw)
	if err != nil {
		return RouteType_Unknown
	}
	t, _ := NewRouteType(i)
	return t
}

func parseTrips(f *csv.File) []Trip {
	idColumn := f.RequiredColumn("trip_id")
	routeIdColumn := f.RequiredColumn("route_id")
	serviceIdColumn := f.RequiredColumn("service_id")
	shortNameColumn := f.OptionalColumn("trip_short_name")
	headsignColumn := f.OptionalColumn("trip_headsign")
	directionColumn := f.OptionalColumn("direction_id")
	var trips []Trip
	for f.NextRow() {
		trip := Trip{
			Id:          idColumn.Read(),
			RouteId:     routeIdColumn.Read(),
			ServiceId:   serviceIdColumn.Read(),
			ShortName:   shortNameColumn.Read(),
			Headsign:    headsignColumn.Read(),
			DirectionId: parseInt32(directionColumn.Read()),
		}
		if missingKeys := f.MissingRowKeys(); len(missingKeys) > 0 {
			log.Printf("Skipping trip %+v because of missing keys %s", trip, missingKeys)
			continue
		}
		trips = append(trips, trip)
	}
	return trips
}

func parseCalendar(f *csv.File) []Service {
	idColumn := f.RequiredColumn("service_id")
	var dayColumns [7]csv.RequiredColumn
	for i, day := range constants.GTFSDays {
		dayColumns[i] = f.RequiredColumn(day)
	}
	startDateColumn := f.RequiredColumn("start_date")
	endDateColumn := f.RequiredColumn("end_date")
	var services []Service
	for f.NextRow() {
		service := Service{
			Id:        idColumn.Read(),
			StartDate: startDateColumn.Read(),
			EndDate:   endDateColumn.Read(),
		}
		for i := range dayColumns {
			service.Days[i] = dayColumns[i].Read() == "1"
		}
		if missingKeys := f.MissingRowKeys(); len(missingKeys) > 0 {
			log.Printf("Skipping calendar row %+v because of missing keys %s", service, missingKeys)
			continue
		}
		services = append(services, service)
	}
	return services
}

func parseStopTimes(f *csv.File) []StopTime {
	tripIdColumn := f.RequiredColumn("trip_id")
	stopIdColumn := f.RequiredColumn("stop_id")
	stopSequenceColumn := f.RequiredColumn("stop_sequence")
	arrivalColumn := f.OptionalColumn("arrival_time")
	departureColumn := f.OptionalColumn("departure_time")
	pickupColumn := f.OptionalColumn("pickup_type")
	dropOffColumn := f.OptionalColumn("drop_off_type")
	timepointColumn := f.OptionalColumn("timepoint")
	var stopTimes []StopTime
	for f.NextRow() {
		stopTime := StopTime{
			TripId:        tripIdColumn.Read(),
			StopId:        stopIdColumn.Read(),
			StopSequence:  int(parseInt32(stopSequenceColumn.Read())),
			ArrivalTime:   arrivalColumn.Read(),
			DepartureTime: departureColumn.Read(),
			PickupType:    parsePickupDropOff(pickupColumn.Read()),
			DropOffType:   parsePickupDropOff(dropOffColumn.Read()),
			Timepoint:     parseTimepoint(timepointColumn.Read()),
		}
		if missingKeys := f.MissingRowKeys(); len(missingKeys) > 0 {
			log.Printf("Skipping stop time %+v because of missing keys %s", stopTime, missingKeys)
			continue
		}
		stopTimes = append(stopTimes, stopTime)
	}
	return stopTimes
}

func parsePickupDropOff(raw string) PickupDropOffPolicy {
	if raw == "" {
		return PickupDropOffPolicy_Yes
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return PickupDropOffPolicy_Yes
	}
	t, _ := NewPickupDropOffPolicy(i)
	return t
}

func parseTimepoint(raw string) TimepointExactness {
	// VIA Rail includes the column but leaves it blank, which means "exact".
	// A blank is therefore mapped to Unspecified, not Approximate.
	switch raw {
	case "0":
		return Timepoint_Approximate
	case "1":
		return Timepoint_Exact
	}
	return Timepoint_Unspecified
}

func parseInt32(raw string) int32 {
	i, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0
	}
	return int32(i)
}
