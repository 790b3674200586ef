// Package testutil builds in-memory GTFS zip fixtures for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
)

// ZipBuilder assembles a GTFS zip from per-file CSV content. The zero set of
// tables is never valid; start from NewZipBuilder or NewDefaultZipBuilder.
type ZipBuilder struct {
	m map[string]string
}

// NewZipBuilder returns a builder with header-only tables: structurally
// complete, containing no data.
func NewZipBuilder() *ZipBuilder {
	return (&ZipBuilder{m: map[string]string{}}).Add(
		"agency.txt", "agency_id,agency_name,agency_url,agency_timezone",
	).Add(
		"stops.txt", "stop_id,stop_code,stop_name,stop_timezone",
	).Add(
		"routes.txt", "route_id,agency_id,route_short_name,route_long_name,route_type",
	).Add(
		"trips.txt", "route_id,service_id,trip_id,trip_short_name,direction_id",
	).Add(
		"calendar.txt", "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
	).Add(
		"stop_times.txt", "trip_id,stop_id,stop_sequence,arrival_time,departure_time,pickup_type,drop_off_type",
	)
}

// NewDefaultZipBuilder returns a small self-consistent fixture: trains 59
// and 60 on one route, three stations, one daily calendar. Train 59 stops at
// CHI, MEM (2 minute dwell) and NOL; train 60 skips NOL.
func NewDefaultZipBuilder() *ZipBuilder {
	return NewZipBuilder().Add(
		"agency.txt",
		"agency_id,agency_name,agency_url,agency_timezone",
		"amtrak,Amtrak,https://www.amtrak.com,America/New_York",
	).Add(
		"stops.txt",
		"stop_id,stop_code,stop_name,stop_timezone",
		"CHI,CHI,Chicago Union Station,America/Chicago",
		"MEM,MEM,Memphis Central Station,America/Chicago",
		"NOL,NOL,New Orleans Union Passenger Terminal,America/Chicago",
	).Add(
		"routes.txt",
		"route_id,agency_id,route_short_name,route_long_name,route_type",
		"cono,amtrak,,City of New Orleans,2",
	).Add(
		"trips.txt",
		"route_id,service_id,trip_id,trip_short_name,direction_id",
		"cono,daily,t59,59,0",
		"cono,daily,t60,60,1",
	).Add(
		"calendar.txt",
		"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
		"daily,1,1,1,1,1,1,1,20260101,20261231",
	).Add(
		"stop_times.txt",
		"trip_id,stop_id,stop_sequence,arrival_time,departure_time,pickup_type,drop_off_type",
		"t59,CHI,1,19:05:00,19:05:00,0,0",
		"t59,MEM,2,27:27:00,27:29:00,0,0",
		"t59,NOL,3,34:32:00,34:32:00,0,0",
		"t60,CHI,2,09:00:00,09:00:00,0,0",
		"t60,MEM,1,01:30:00,01:32:00,0,0",
	)
}

// Add sets a file's content, one line per argument. Re-adding a file
// replaces it.
func (z *ZipBuilder) Add(fileName string, fileContent ...string) *ZipBuilder {
	z.m[fileName] = strings.Join(fileContent, "\n")
	return z
}

func (z *ZipBuilder) Build() []byte {
	var b bytes.Buffer
	zipWriter := zip.NewWriter(&b)
	for fileName, fileContent := range z.m {
		fileWriter, err := zipWriter.Create(fileName)
		if err != nil {
			panic(err)
		}
		if _, err := io.Copy(fileWriter, bytes.NewBufferString(fileContent)); err != nil {
			panic(err)
		}
	}
	if err := zipWriter.Close(); err != nil {
		panic(err)
	}
	return b.Bytes()
}
