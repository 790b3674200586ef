package timetable

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/transitkit/timetable/internal/testutil"
)

func TestParseFeed(t *testing.T) {
	feed, err := ParseFeed(testutil.NewDefaultZipBuilder().Build())
	if err != nil {
		t.Fatalf("ParseFeed() error: %s", err)
	}
	want := &Feed{
		Agencies: []Agency{
			{Id: "amtrak", Name: "Amtrak", Url: "https://www.amtrak.com", Timezone: "America/New_York"},
		},
		Stops: []Stop{
			{Id: "CHI", Code: "CHI", Name: "Chicago Union Station", Timezone: "America/Chicago"},
			{Id: "MEM", Code: "MEM", Name: "Memphis Central Station", Timezone: "America/Chicago"},
			{Id: "NOL", Code: "NOL", Name: "New Orleans Union Passenger Terminal", Timezone: "America/Chicago"},
		},
		Routes: []Route{
			{Id: "cono", AgencyId: "amtrak", LongName: "City of New Orleans", Type: RouteType_Rail, Color: "FFFFFF"},
		},
		Trips: []Trip{
			{Id: "t59", RouteId: "cono", ServiceId: "daily", ShortName: "59", DirectionId: 0},
			{Id: "t60", RouteId: "cono", ServiceId: "daily", ShortName: "60", DirectionId: 1},
		},
		Calendar: []Service{
			{
				Id:        "daily",
				Days:      [7]bool{true, true, true, true, true, true, true},
				StartDate: "20260101",
				EndDate:   "20261231",
			},
		},
		StopTimes: []StopTime{
			{TripId: "t59", StopId: "CHI", StopSequence: 1, ArrivalTime: "19:05:00", DepartureTime: "19:05:00", Timepoint: Timepoint_Unspecified},
			{TripId: "t59", StopId: "MEM", StopSequence: 2, ArrivalTime: "27:27:00", DepartureTime: "27:29:00", Timepoint: Timepoint_Unspecified},
			{TripId: "t59", StopId: "NOL", StopSequence: 3, ArrivalTime: "34:32:00", DepartureTime: "34:32:00", Timepoint: Timepoint_Unspecified},
			{TripId: "t60", StopId: "CHI", StopSequence: 2, ArrivalTime: "09:00:00", DepartureTime: "09:00:00", Timepoint: Timepoint_Unspecified},
			{TripId: "t60", StopId: "MEM", StopSequence: 1, ArrivalTime: "01:30:00", DepartureTime: "01:32:00", Timepoint: Timepoint_Unspecified},
		},
	}
	if diff := cmp.Diff(feed, want); diff != "" {
		t.Errorf("ParseFeed() got = %+v, want = %+v, diff = %s", feed, want, diff)
	}
}

func TestParseFeedSkipsRowsWithMissingKeys(t *testing.T) {
	content := testutil.NewDefaultZipBuilder().Add(
		"trips.txt",
		"route_id,service_id,trip_id,trip_short_name,direction_id",
		"cono,daily,t59,59,0",
		"cono,daily,,60,1",
	).Build()
	feed, err := ParseFeed(content)
	if err != nil {
		t.Fatalf("ParseFeed() error: %s", err)
	}
	if len(feed.Trips) != 1 {
		t.Fatalf("ParseFeed() got %d trips, want 1", len(feed.Trips))
	}
	if feed.Trips[0].Id != "t59" {
		t.Errorf("ParseFeed() kept trip %q, want t59", feed.Trips[0].Id)
	}
}

func TestParseFeedNotAZip(t *testing.T) {
	if _, err := ParseFeed([]byte("not a zip archive")); err == nil {
		t.Errorf("ParseFeed() on garbage input: expected an error, got none")
	}
}

func TestParseRouteType(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want RouteType
	}{
		{"2", RouteType_Rail},
		{"3", RouteType_Bus},
		{"11", RouteType_TrolleyBus},
		{"99", RouteType_Unknown},
		{"not a number", RouteType_Unknown},
	} {
		if got := parseRouteType(tc.raw); got != tc.want {
			t.Errorf("parseRouteType(%q) got = %s, want = %s", tc.raw, got, tc.want)
		}
	}
}

func TestParseTimepoint(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want TimepointExactness
	}{
		{"0", Timepoint_Approximate},
		{"1", Timepoint_Exact},
		// VIA Rail includes the column but leaves it blank.
		{"", Timepoint_Unspecified},
	} {
		if got := parseTimepoint(tc.raw); got != tc.want {
			t.Errorf("parseTimepoint(%q) got = %d, want = %d", tc.raw, got, tc.want)
		}
	}
}
