package timetable

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/transitkit/timetable/constants"
	"github.com/transitkit/timetable/csv"
	"gopkg.in/yaml.v3"
)

// specialColumnNames are reserved column headers which must never be
// interpreted as train specs.
var specialColumnNames = map[string]bool{
	"":         true,
	"station":  true,
	"stations": true,
	"services": true,
	"access":   true,
	"timezone": true,
	"mile":     true,
}

// specialRowNames are reserved row headers which must never be interpreted
// as station codes.
var specialRowNames = map[string]bool{
	"":               true,
	"omit":           true,
	"column-options": true,
	"column_options": true,
	"route-name":     true,
	"updown":         true,
	"days":           true,
	"days-of-week":   true,
	"origin":         true,
	"destination":    true,
}

func isSpecialColumnName(s string) bool {
	return specialColumnNames[strings.ToLower(strings.TrimSpace(s))]
}

func isSpecialRowName(s string) bool {
	return specialRowNames[strings.ToLower(strings.TrimSpace(s))]
}

// SpecOptions is the aux options file accompanying a spec grid, YAML-encoded.
type SpecOptions struct {
	// ReferenceDate is the single YYYYMMDD date the timetable is built for.
	// Mandatory by fill time; may be filled in programmatically after load.
	ReferenceDate string `yaml:"reference_date" validate:"omitempty,len=8,numeric"`
	Heading       string `yaml:"heading"`
	AriaLabel     string `yaml:"aria_label"`
	// TableId uniquely identifies the rendered table. Page splitting suffixes
	// it, so it must be set before Paginate.
	TableId           string `yaml:"tt_id"`
	MaxColumnsPerPage int    `yaml:"max_columns_per_page" validate:"gte=0"`
	// DwellSecsCutoff is the dwell below which a station gets a single
	// combined time row rather than separate arrival/departure rows.
	DwellSecsCutoff        int    `yaml:"dwell_secs_cutoff" validate:"gte=0"`
	Times24h               bool   `yaml:"times_24h"`
	TrainNumbersSideBySide bool   `yaml:"train_numbers_side_by_side"`
	UseBusIconInCells      bool   `yaml:"use_bus_icon_in_cells"`
	// AllowDuplicateTrips accepts a train number that matches more than one
	// trip on the reference date, keeping the last. Off, the match is fatal.
	AllowDuplicateTrips bool   `yaml:"allow_duplicate_trips"`
	ArdpMode            string `yaml:"ardp_mode" validate:"omitempty,oneof=dwell major always never"`
}

func (o *SpecOptions) applyDefaults() {
	if o.DwellSecsCutoff == 0 {
		o.DwellSecsCutoff = 300
	}
	if o.ArdpMode == "" {
		o.ArdpMode = "dwell"
	}
}

// GridSpec is a hand-authored timetable specification: a 2D grid whose row 0
// holds column headers (special names or slash-joined train specs) and whose
// column 0 holds row headers (special names or station codes), plus the aux
// options.
//
// A GridSpec moves one-way through a lifecycle:
//
//	raw -> StripOmits -> ExtractColumnOptions -> ExpandKeyRow -> Paginate
//
// The steps must run in this order; later steps address rows by position and
// assume the earlier cleanups already happened.
type GridSpec struct {
	Options SpecOptions
	Cells   [][]string
	// ColumnOptions is indexed by column; nil until ExtractColumnOptions.
	ColumnOptions [][]string
}

// LoadSpec reads a spec grid CSV and its YAML aux options. auxReader may be
// nil when no aux file exists.
func LoadSpec(gridReader io.Reader, auxReader io.Reader) (*GridSpec, error) {
	cells, err := csv.ReadGrid(gridReader)
	if err != nil {
		return nil, specErrorf("cannot read spec grid: %s", err)
	}
	if len(cells) == 0 {
		return nil, specErrorf("spec grid is empty")
	}
	var options SpecOptions
	if auxReader != nil {
		data, err := io.ReadAll(auxReader)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &options); err != nil {
			return nil, specErrorf("cannot parse aux options: %s", err)
		}
	}
	if err := validator.New().Struct(options); err != nil {
		return nil, specErrorf("invalid aux options: %s", err)
	}
	options.applyDefaults()
	return &GridSpec{Options: options, Cells: cells}, nil
}

func (s *GridSpec) RowCount() int {
	return len(s.Cells)
}

func (s *GridSpec) ColumnCount() int {
	if len(s.Cells) == 0 {
		return 0
	}
	return len(s.Cells[0])
}

// StripOmits removes every row whose first cell is the reserved token "omit",
// used for author comments. Idempotent.
func (s *GridSpec) StripOmits() {
	kept := s.Cells[:0:0]
	for _, row := range s.Cells {
		if strings.TrimSpace(row[0]) == "omit" {
			continue
		}
		kept = append(kept, row)
	}
	s.Cells = kept
}

// ExtractColumnOptions pulls the per-column option lists out of the grid. If
// row 1's first cell is "column-options", each cell of that row is split
// into space-separated tokens and the row is deleted; otherwise every column
// gets an empty option list and the grid is untouched.
func (s *GridSpec) ExtractColumnOptions() {
	s.ColumnOptions = make([][]string, s.ColumnCount())
	for i := range s.ColumnOptions {
		s.ColumnOptions[i] = []string{}
	}
	if s.RowCount() < 2 {
		return
	}
	switch strings.ToLower(strings.TrimSpace(s.Cells[1][0])) {
	case "column-options", "column_options":
	default:
		return
	}
	for i, cell := range s.Cells[1] {
		s.ColumnOptions[i] = strings.Fields(cell)
	}
	s.Cells = append(s.Cells[:1], s.Cells[2:]...)
}

// ColumnHasOption reports whether the named option was set on column x.
func (s *GridSpec) ColumnHasOption(x int, option string) bool {
	if s.ColumnOptions == nil || x >= len(s.ColumnOptions) {
		return false
	}
	for _, o := range s.ColumnOptions[x] {
		if o == option {
			return true
		}
	}
	return false
}

// ExpandKeyRow handles the "stations of 59" shorthand in cell (0,0): the
// ordered station list of the named train (optionally day-qualified, e.g.
// "stations of 59 monday") is appended as station rows and the key cell is
// blanked. An empty key cell is a no-op; any other content is an error.
func (s *GridSpec) ExpandKeyRow(feed *Feed, ag AgencyCapabilities) error {
	keyCode := strings.TrimSpace(s.Cells[0][0])
	if keyCode == "" {
		return nil
	}
	trainName, ok := strings.CutPrefix(keyCode, "stations of ")
	if !ok {
		return specErrorf("key cell must be blank or 'stations of xxx', was %q", keyCode)
	}
	if s.Options.ReferenceDate == "" {
		return specErrorf("no reference date set; cannot expand %q", keyCode)
	}
	todayFeed := feed.FilterByDate(s.Options.ReferenceDate)
	for _, day := range constants.GTFSDays {
		if rest, found := strings.CutSuffix(trainName, " "+day); found {
			trainName = strings.TrimSpace(rest)
			dayFeed, err := todayFeed.FilterByDayOfWeek(day)
			if err != nil {
				return err
			}
			todayFeed = dayFeed
			break
		}
	}
	stations, err := StationsFromTrainNumber(todayFeed, trainName, ag)
	if err != nil {
		return err
	}
	s.Cells[0][0] = ""
	width := s.ColumnCount()
	for _, station := range stations {
		row := make([]string, width)
		row[0] = station
		s.Cells = append(s.Cells, row)
	}
	return nil
}

// firstRegularColumn returns the index of the first non-special column. All
// special columns must form a contiguous left prefix for pagination to work.
func (s *GridSpec) firstRegularColumn() (int, error) {
	for x := 1; x < s.ColumnCount(); x++ {
		if !isSpecialColumnName(s.Cells[0][x]) {
			return x, nil
		}
	}
	return 0, specErrorf("cannot paginate: no regular columns, only special columns")
}

// Paginate splits an overly wide spec into page-sized sub-specs according to
// MaxColumnsPerPage, duplicating the special-column prefix onto every page.
// Requires ExtractColumnOptions to have run. A zero MaxColumnsPerPage means
// no splitting.
//
// Anti-orphan rule: a nearly empty trailing page is never produced; when the
// final page would get fewer than MaxColumnsPerPage-1 columns, the boundary
// shifts so the last two pages are balanced instead.
func (s *GridSpec) Paginate() ([]*GridSpec, error) {
	colsPerPage := s.Options.MaxColumnsPerPage
	if colsPerPage == 0 {
		return []*GridSpec{s}, nil
	}
	if s.ColumnOptions == nil {
		return nil, specErrorf("cannot paginate before column options are extracted")
	}
	firstRegular, err := s.firstRegularColumn()
	if err != nil {
		return nil, err
	}
	columnCount := s.ColumnCount()
	numRegular := columnCount - firstRegular
	numPages := (numRegular + colsPerPage - 1) / colsPerPage

	var pages []*GridSpec
	shift := 0
	for i := 0; i < numPages; i++ {
		firstCol := firstRegular + i*colsPerPage
		postFinalCol := firstCol + colsPerPage
		if postFinalCol > columnCount {
			postFinalCol = columnCount
		}
		if i == numPages-2 {
			if trailing := columnCount - postFinalCol; trailing > 0 && trailing < colsPerPage-1 {
				// Too few columns left for the final page. Rebalance the
				// last two pages rather than print a near-empty one.
				total := colsPerPage + trailing
				shift = colsPerPage - (total - total/2)
				postFinalCol -= shift
			}
		}
		if i == numPages-1 {
			// Pick up the columns the rebalance left behind.
			firstCol -= shift
		}

		page := &GridSpec{Options: s.Options}
		page.Options.MaxColumnsPerPage = 0
		page.Options.Heading += fmt.Sprintf(" Page %d/%d", i+1, numPages)
		page.Options.AriaLabel += fmt.Sprintf(" page %d", i+1)
		// IDs must stay unique across pages.
		page.Options.TableId += fmt.Sprintf("_page_%d", i+1)

		for _, row := range s.Cells {
			pageRow := make([]string, 0, firstRegular+(postFinalCol-firstCol))
			pageRow = append(pageRow, row[:firstRegular]...)
			pageRow = append(pageRow, row[firstCol:postFinalCol]...)
			page.Cells = append(page.Cells, pageRow)
		}
		for _, opts := range s.ColumnOptions[:firstRegular] {
			page.ColumnOptions = append(page.ColumnOptions, append([]string{}, opts...))
		}
		for _, opts := range s.ColumnOptions[firstCol:postFinalCol] {
			page.ColumnOptions = append(page.ColumnOptions, append([]string{}, opts...))
		}
		if i > 0 {
			// Continuation pages repeat the Ar/Dp labels in the left column.
			page.ColumnOptions[0] = append(page.ColumnOptions[0], "ardp")
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// StationCodes returns the station codes appearing in column 0, in order,
// with special row names excluded.
func (s *GridSpec) StationCodes() []string {
	var codes []string
	for y := 1; y < s.RowCount(); y++ {
		code := strings.TrimSpace(s.Cells[y][0])
		if isSpecialRowName(code) {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

// TrainSpecColumnKeys returns the raw train-spec column headers (possibly
// slash-joined), in order, with special column names excluded.
func (s *GridSpec) TrainSpecColumnKeys() []string {
	var keys []string
	for x := 1; x < s.ColumnCount(); x++ {
		key := strings.TrimSpace(s.Cells[0][x])
		if isSpecialColumnName(key) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
