// Package warnings holds the non-fatal diagnostics the engine can emit.
//
// These conditions are tolerated by policy: upstream feeds are known to
// contain harmless exact duplicates, and refusing to proceed would block
// otherwise-correct output. They are still surfaced so a maintainer can spot
// the ones that are not harmless.
package warnings

import "fmt"

type Warning interface {
	Error() string
}

// DuplicateTrainNumber records a trip_short_name that maps to more than one
// trip_id. Resolution policy is last-write-wins.
type DuplicateTrainNumber struct {
	TrainNumber   string
	Day           string // empty when found outside a day-qualified map
	KeptTripId    string
	DroppedTripId string
}

func (w DuplicateTrainNumber) Error() string {
	if w.Day != "" {
		return fmt.Sprintf("duplicate train number %q on %s: keeping trip %s, dropping trip %s",
			w.TrainNumber, w.Day, w.KeptTripId, w.DroppedTripId)
	}
	return fmt.Sprintf("duplicate train number %q: keeping trip %s, dropping trip %s",
		w.TrainNumber, w.KeptTripId, w.DroppedTripId)
}

// UnstyledBlankCell records a blank cell left uncolored because more than one
// train was in play and no single color could be correctly attributed.
type UnstyledBlankCell struct {
	StationCode string
	ColumnKey   string
}

func (w UnstyledBlankCell) Error() string {
	return fmt.Sprintf("blank cell at station %q in column %q left uncolored: multiple trains in play",
		w.StationCode, w.ColumnKey)
}
