package timetable

import "testing"

func TestGenericAgencyStopCodes(t *testing.T) {
	feed := &Feed{Stops: []Stop{
		{Id: "stop-1", Code: "CHI", Name: "Chicago Union Station"},
		// No stop_code: the stop_id doubles as the code.
		{Id: "MEM", Name: "Memphis Central Station"},
	}}
	ag := NewGenericAgency(feed)

	if got := ag.StopCodeToStopId("CHI"); got != "stop-1" {
		t.Errorf("StopCodeToStopId(CHI) got = %q, want stop-1", got)
	}
	if got := ag.StopIdToStopCode("stop-1"); got != "CHI" {
		t.Errorf("StopIdToStopCode(stop-1) got = %q, want CHI", got)
	}
	if got := ag.StopCodeToStopId("MEM"); got != "MEM" {
		t.Errorf("StopCodeToStopId(MEM) got = %q, want MEM", got)
	}
	// Unknown codes pass through rather than vanish.
	if got := ag.StopCodeToStopId("XYZ"); got != "XYZ" {
		t.Errorf("StopCodeToStopId(XYZ) got = %q, want XYZ", got)
	}
}

func TestGenericAgencyPrettyStationName(t *testing.T) {
	feed := &Feed{Stops: []Stop{{Id: "CHI", Code: "CHI", Name: "Chicago Union Station"}}}
	ag := NewGenericAgency(feed)

	for _, tc := range []struct {
		mode  StationNameMode
		major bool
		want  string
	}{
		{StationNameMode_SingleLine, false, "Chicago Union Station (CHI)"},
		{StationNameMode_Multiline, false, "Chicago Union Station\n(CHI)"},
		{StationNameMode_SingleLine, true, "CHICAGO UNION STATION (CHI)"},
		{StationNameMode_HTML, false, `<span class="station-name">Chicago Union Station</span> (CHI)`},
	} {
		if got := ag.PrettyStationName("CHI", tc.major, tc.mode); got != tc.want {
			t.Errorf("PrettyStationName(CHI, %t, %s) got = %q, want = %q", tc.major, tc.mode, got, tc.want)
		}
	}
	// A station missing from the feed still renders.
	if got := ag.PrettyStationName("XYZ", false, StationNameMode_SingleLine); got != "XYZ (XYZ)" {
		t.Errorf("PrettyStationName(XYZ) got = %q, want XYZ (XYZ)", got)
	}
}

func TestGenericAgencyRouteDisplayName(t *testing.T) {
	feed := &Feed{Routes: []Route{
		{Id: "cono", LongName: "City of New Orleans"},
		{Id: "hiawatha", ShortName: "Hiawatha"},
	}}
	ag := NewGenericAgency(feed)

	if got := ag.RouteDisplayName(feed, "cono"); got != "City of New Orleans" {
		t.Errorf("RouteDisplayName(cono) got = %q", got)
	}
	if got := ag.RouteDisplayName(feed, "hiawatha"); got != "Hiawatha" {
		t.Errorf("RouteDisplayName(hiawatha) got = %q", got)
	}
	if got := ag.RouteDisplayName(feed, "ghost"); got != "ghost" {
		t.Errorf("RouteDisplayName(ghost) got = %q, want the route id back", got)
	}
}
