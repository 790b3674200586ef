package amtrak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitkit/timetable"
	"github.com/transitkit/timetable/internal/testutil"
)

func newTestAgency(t *testing.T) *Agency {
	feed, err := timetable.ParseFeed(testutil.NewDefaultZipBuilder().Build())
	require.NoError(t, err)
	return New(feed)
}

func TestIsSleeperTrain(t *testing.T) {
	ag := newTestAgency(t)
	assert.True(t, ag.IsSleeperTrain("59"), "City of New Orleans carries sleepers")
	assert.True(t, ag.IsSleeperTrain("448"), "Lake Shore Limited Boston section")
	assert.False(t, ag.IsSleeperTrain("79"), "Carolinian is coach only")
	assert.False(t, ag.IsSleeperTrain("2150"), "Acela is coach/first only")
}

func TestTrainHasCheckedBaggage(t *testing.T) {
	ag := newTestAgency(t)
	assert.True(t, ag.TrainHasCheckedBaggage("59"))
	assert.True(t, ag.TrainHasCheckedBaggage("79"), "Carolinian carries a baggage car")
	assert.True(t, ag.TrainHasCheckedBaggage("580"), "Surfliner range")
	assert.True(t, ag.TrainHasCheckedBaggage("349"), "Hiawatha range")
	// 448/449 are sleepers without a baggage car.
	assert.False(t, ag.TrainHasCheckedBaggage("448"))
	assert.False(t, ag.TrainHasCheckedBaggage("449"))
	assert.False(t, ag.TrainHasCheckedBaggage("2150"))
}

func TestIsHighSpeedTrain(t *testing.T) {
	ag := newTestAgency(t)
	assert.True(t, ag.IsHighSpeedTrain("2100"))
	assert.True(t, ag.IsHighSpeedTrain("2299"))
	assert.False(t, ag.IsHighSpeedTrain("2300"))
	assert.False(t, ag.IsHighSpeedTrain("59"))
	assert.False(t, ag.IsHighSpeedTrain("H401"))
}

func TestIsConnectingService(t *testing.T) {
	ag := newTestAgency(t)
	assert.True(t, ag.IsConnectingService("3059"), "Thruway numbers start at 3000")
	assert.True(t, ag.IsConnectingService("H401"), "lettered numbers are partner services")
	assert.False(t, ag.IsConnectingService("59"))
	assert.False(t, ag.IsConnectingService("2999"))
}

func TestIsStandardMajorStation(t *testing.T) {
	ag := newTestAgency(t)
	assert.True(t, ag.IsStandardMajorStation("CHI"))
	assert.True(t, ag.IsStandardMajorStation("NOL"))
	assert.False(t, ag.IsStandardMajorStation("MCK"))
}

func TestStationHasCheckedBaggage(t *testing.T) {
	ag := newTestAgency(t)
	assert.True(t, ag.StationHasCheckedBaggage("CHI"))
	assert.False(t, ag.StationHasCheckedBaggage("MCK"))

	// The table is replaceable when better source data shows up.
	ag.BaggageStations = map[string]bool{"MCK": true}
	assert.True(t, ag.StationHasCheckedBaggage("MCK"))
	assert.False(t, ag.StationHasCheckedBaggage("CHI"))
}

func TestStopCodeTranslationIsIdentity(t *testing.T) {
	ag := newTestAgency(t)
	assert.Equal(t, "CHI", ag.StopCodeToStopId("CHI"))
	assert.Equal(t, "CHI", ag.StopIdToStopCode("CHI"))
}

func TestBadServiceIds(t *testing.T) {
	ag := newTestAgency(t)
	assert.Empty(t, ag.BadServiceIds())
	ag.BadCalendarServiceIds = []string{"broken"}
	assert.Equal(t, []string{"broken"}, ag.BadServiceIds())
}

func TestRouteDisplayName(t *testing.T) {
	content := testutil.NewDefaultZipBuilder().Add(
		"routes.txt",
		"route_id,agency_id,route_short_name,route_long_name,route_type",
		"cono,amtrak,,City of New Orleans,2",
		"thruway,amtrak,,Amtrak Thruway Connecting Service,3",
	).Build()
	feed, err := timetable.ParseFeed(content)
	require.NoError(t, err)
	ag := New(feed)
	assert.Equal(t, "City of New Orleans", ag.RouteDisplayName(feed, "cono"))
	// The generic Thruway name is useless in a column header.
	assert.Equal(t, "Thruway", ag.RouteDisplayName(feed, "thruway"))
}

func TestPrettyStationName(t *testing.T) {
	ag := newTestAgency(t)
	assert.Equal(t, "Chicago Union Station (CHI)",
		ag.PrettyStationName("CHI", false, timetable.StationNameMode_SingleLine))
	assert.Equal(t, "Chicago Union Station\n(CHI)",
		ag.PrettyStationName("CHI", false, timetable.StationNameMode_Multiline))
	assert.Equal(t, "CHICAGO UNION STATION (CHI)",
		ag.PrettyStationName("CHI", true, timetable.StationNameMode_SingleLine))
}
