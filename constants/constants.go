package constants

// FeedFile names a table file inside a GTFS static zip.
type FeedFile string

const (
	AgencyFile    FeedFile = "agency.txt"
	StopsFile     FeedFile = "stops.txt"
	RoutesFile    FeedFile = "routes.txt"
	TripsFile     FeedFile = "trips.txt"
	CalendarFile  FeedFile = "calendar.txt"
	StopTimesFile FeedFile = "stop_times.txt"
)

// GTFSDays lists the calendar day columns in GTFS order (Monday first).
// Lowercase, matching both the calendar.txt headers and the day qualifiers
// accepted in train specs ("91 monday").
var GTFSDays = [7]string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}
