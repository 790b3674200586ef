package timetable

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadSpec(t *testing.T) {
	grid := strings.NewReader("stations of 59,station,59\ncolumn-options,,ardp\n")
	aux := strings.NewReader(`
reference_date: "20260601"
heading: City of New Orleans
tt_id: cono
dwell_secs_cutoff: 600
ardp_mode: major
`)
	spec, err := LoadSpec(grid, aux)
	if err != nil {
		t.Fatalf("LoadSpec() error: %s", err)
	}
	wantCells := [][]string{
		{"stations of 59", "station", "59"},
		{"column-options", "", "ardp"},
	}
	if diff := cmp.Diff(spec.Cells, wantCells); diff != "" {
		t.Errorf("LoadSpec() cells got = %+v, want = %+v, diff = %s", spec.Cells, wantCells, diff)
	}
	wantOptions := SpecOptions{
		ReferenceDate:   "20260601",
		Heading:         "City of New Orleans",
		TableId:         "cono",
		DwellSecsCutoff: 600,
		ArdpMode:        "major",
	}
	if diff := cmp.Diff(spec.Options, wantOptions); diff != "" {
		t.Errorf("LoadSpec() options got = %+v, want = %+v, diff = %s", spec.Options, wantOptions, diff)
	}
}

func TestLoadSpecDefaults(t *testing.T) {
	spec, err := LoadSpec(strings.NewReader(",59\n"), nil)
	if err != nil {
		t.Fatalf("LoadSpec() error: %s", err)
	}
	if spec.Options.DwellSecsCutoff != 300 {
		t.Errorf("default dwell_secs_cutoff got = %d, want 300", spec.Options.DwellSecsCutoff)
	}
	if spec.Options.ArdpMode != "dwell" {
		t.Errorf("default ardp_mode got = %q, want dwell", spec.Options.ArdpMode)
	}
}

func TestLoadSpecInvalidOptions(t *testing.T) {
	for _, tc := range []struct {
		description string
		aux         string
	}{
		{"bad reference date", `reference_date: "2026-06-01"`},
		{"bad ardp mode", `ardp_mode: sometimes`},
		{"negative columns per page", `max_columns_per_page: -1`},
	} {
		t.Run(tc.description, func(t *testing.T) {
			_, err := LoadSpec(strings.NewReader(",59\n"), strings.NewReader(tc.aux))
			var specErr *SpecError
			if !errors.As(err, &specErr) {
				t.Errorf("LoadSpec() error got %v, want a *SpecError", err)
			}
		})
	}
}

func TestLoadSpecRaggedGridIsPadded(t *testing.T) {
	spec, err := LoadSpec(strings.NewReader(",station,59,60\nCHI\n"), nil)
	if err != nil {
		t.Fatalf("LoadSpec() error: %s", err)
	}
	want := [][]string{
		{"", "station", "59", "60"},
		{"CHI", "", "", ""},
	}
	if diff := cmp.Diff(spec.Cells, want); diff != "" {
		t.Errorf("LoadSpec() cells got = %+v, want = %+v, diff = %s", spec.Cells, want, diff)
	}
}

func TestStripOmits(t *testing.T) {
	spec := &GridSpec{Cells: [][]string{
		{"", "59"},
		{"omit", "notes to self go here"},
		{"CHI", ""},
		{" omit ", "more notes"},
	}}
	want := [][]string{
		{"", "59"},
		{"CHI", ""},
	}
	spec.StripOmits()
	if diff := cmp.Diff(spec.Cells, want); diff != "" {
		t.Errorf("StripOmits() got = %+v, want = %+v, diff = %s", spec.Cells, want, diff)
	}
	// Idempotent.
	spec.StripOmits()
	if diff := cmp.Diff(spec.Cells, want); diff != "" {
		t.Errorf("StripOmits() twice got = %+v, want = %+v, diff = %s", spec.Cells, want, diff)
	}
}

func TestExtractColumnOptions(t *testing.T) {
	spec := &GridSpec{Cells: [][]string{
		{"", "station", "59"},
		{"column-options", "", "reverse ardp"},
		{"CHI", "", ""},
	}}
	spec.ExtractColumnOptions()
	wantCells := [][]string{
		{"", "station", "59"},
		{"CHI", "", ""},
	}
	if diff := cmp.Diff(spec.Cells, wantCells); diff != "" {
		t.Errorf("ExtractColumnOptions() cells got = %+v, want = %+v, diff = %s", spec.Cells, wantCells, diff)
	}
	wantOptions := [][]string{{}, {}, {"reverse", "ardp"}}
	if diff := cmp.Diff(spec.ColumnOptions, wantOptions); diff != "" {
		t.Errorf("ExtractColumnOptions() options got = %+v, want = %+v, diff = %s", spec.ColumnOptions, wantOptions, diff)
	}
	if !spec.ColumnHasOption(2, "reverse") || !spec.ColumnHasOption(2, "ardp") {
		t.Errorf("ColumnHasOption() missed an extracted option")
	}
	if spec.ColumnHasOption(1, "reverse") || spec.ColumnHasOption(99, "reverse") {
		t.Errorf("ColumnHasOption() reported an option that is not set")
	}
}

func TestExtractColumnOptionsAbsent(t *testing.T) {
	spec := &GridSpec{Cells: [][]string{
		{"", "59"},
		{"CHI", ""},
	}}
	spec.ExtractColumnOptions()
	if len(spec.Cells) != 2 {
		t.Errorf("ExtractColumnOptions() deleted a row it should not have: %+v", spec.Cells)
	}
	wantOptions := [][]string{{}, {}}
	if diff := cmp.Diff(spec.ColumnOptions, wantOptions); diff != "" {
		t.Errorf("ExtractColumnOptions() options got = %+v, want = %+v, diff = %s", spec.ColumnOptions, wantOptions, diff)
	}
}

func TestExpandKeyRow(t *testing.T) {
	feed := defaultFeed(t)
	spec := &GridSpec{
		Options: SpecOptions{ReferenceDate: "20260601"},
		Cells: [][]string{
			{"stations of 59", "station", "59"},
			{"route-name", "", ""},
		},
	}
	if err := spec.ExpandKeyRow(feed, NewGenericAgency(feed)); err != nil {
		t.Fatalf("ExpandKeyRow() error: %s", err)
	}
	want := [][]string{
		{"", "station", "59"},
		{"route-name", "", ""},
		{"CHI", "", ""},
		{"MEM", "", ""},
		{"NOL", "", ""},
	}
	if diff := cmp.Diff(spec.Cells, want); diff != "" {
		t.Errorf("ExpandKeyRow() got = %+v, want = %+v, diff = %s", spec.Cells, want, diff)
	}
}

func TestExpandKeyRowNoOp(t *testing.T) {
	feed := defaultFeed(t)
	spec := &GridSpec{Cells: [][]string{{"", "59"}, {"CHI", ""}}}
	if err := spec.ExpandKeyRow(feed, NewGenericAgency(feed)); err != nil {
		t.Fatalf("ExpandKeyRow() on a blank key cell: %s", err)
	}
	if len(spec.Cells) != 2 {
		t.Errorf("ExpandKeyRow() on a blank key cell changed the grid: %+v", spec.Cells)
	}
}

func TestExpandKeyRowErrors(t *testing.T) {
	feed := defaultFeed(t)
	spec := &GridSpec{
		Options: SpecOptions{ReferenceDate: "20260601"},
		Cells:   [][]string{{"not a key", "59"}},
	}
	if err := spec.ExpandKeyRow(feed, NewGenericAgency(feed)); err == nil {
		t.Errorf("ExpandKeyRow() with garbage in the key cell: expected an error, got none")
	}

	spec = &GridSpec{Cells: [][]string{{"stations of 59", "59"}}}
	if err := spec.ExpandKeyRow(feed, NewGenericAgency(feed)); err == nil {
		t.Errorf("ExpandKeyRow() without a reference date: expected an error, got none")
	}
}

// paginationSpec builds a spec with two special columns and n train columns,
// column options already extracted.
func paginationSpec(n, maxColumnsPerPage int) *GridSpec {
	header := []string{"", "station"}
	options := [][]string{{}, {}}
	for i := 0; i < n; i++ {
		header = append(header, string(rune('a'+i)))
		options = append(options, []string{})
	}
	row := make([]string, len(header))
	row[0] = "CHI"
	return &GridSpec{
		Options: SpecOptions{
			Heading:           "Test",
			AriaLabel:         "test",
			TableId:           "test",
			MaxColumnsPerPage: maxColumnsPerPage,
		},
		Cells:         [][]string{header, row},
		ColumnOptions: options,
	}
}

func TestPaginate(t *testing.T) {
	for _, tc := range []struct {
		description       string
		trainColumns      int
		maxColumnsPerPage int
		// Train columns per page; the two special columns repeat on each.
		want []int
	}{
		{
			description:       "exact multiple",
			trainColumns:      8,
			maxColumnsPerPage: 4,
			want:              []int{4, 4},
		},
		{
			// Would naively come out (4,4,2); the anti-orphan rule balances
			// the last two pages instead.
			description:       "near-empty trailing page rebalanced",
			trainColumns:      10,
			maxColumnsPerPage: 4,
			want:              []int{4, 3, 3},
		},
		{
			description:       "one-column trailing page rebalanced",
			trainColumns:      9,
			maxColumnsPerPage: 4,
			want:              []int{4, 3, 2},
		},
		{
			description:       "comfortable trailing page untouched",
			trainColumns:      7,
			maxColumnsPerPage: 4,
			want:              []int{4, 3},
		},
		{
			description:       "fits on one page",
			trainColumns:      3,
			maxColumnsPerPage: 4,
			want:              []int{3},
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			spec := paginationSpec(tc.trainColumns, tc.maxColumnsPerPage)
			pages, err := spec.Paginate()
			if err != nil {
				t.Fatalf("Paginate() error: %s", err)
			}
			var got []int
			for _, page := range pages {
				got = append(got, page.ColumnCount()-2)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Paginate() page widths got = %+v, want = %+v, diff = %s", got, tc.want, diff)
			}
			// No column lost or duplicated across pages.
			var regulars []string
			for _, page := range pages {
				regulars = append(regulars, page.Cells[0][2:]...)
			}
			if diff := cmp.Diff(regulars, spec.Cells[0][2:]); diff != "" {
				t.Errorf("Paginate() reassembled columns got = %+v, want = %+v, diff = %s", regulars, spec.Cells[0][2:], diff)
			}
		})
	}
}

func TestPaginateMetadata(t *testing.T) {
	spec := paginationSpec(10, 4)
	pages, err := spec.Paginate()
	if err != nil {
		t.Fatalf("Paginate() error: %s", err)
	}
	if len(pages) != 3 {
		t.Fatalf("Paginate() got %d pages, want 3", len(pages))
	}
	for i, page := range pages {
		if page.Options.MaxColumnsPerPage != 0 {
			t.Errorf("page %d still carries max_columns_per_page; pages must not re-split", i)
		}
	}
	if got := pages[1].Options.Heading; got != "Test Page 2/3" {
		t.Errorf("page heading got = %q, want = %q", got, "Test Page 2/3")
	}
	if got := pages[1].Options.AriaLabel; got != "test page 2" {
		t.Errorf("page aria label got = %q, want = %q", got, "test page 2")
	}
	if got := pages[2].Options.TableId; got != "test_page_3" {
		t.Errorf("page table id got = %q, want = %q", got, "test_page_3")
	}
	// Continuation pages repeat the Ar/Dp labels in the left column.
	if pages[0].ColumnHasOption(0, "ardp") {
		t.Errorf("page 1 should not get the ardp option")
	}
	if !pages[1].ColumnHasOption(0, "ardp") || !pages[2].ColumnHasOption(0, "ardp") {
		t.Errorf("continuation pages missing the ardp option")
	}
	// The special columns repeat on every page.
	for i, page := range pages {
		if page.Cells[0][1] != "station" || page.Cells[1][0] != "CHI" {
			t.Errorf("page %d lost the special column prefix: %+v", i, page.Cells)
		}
	}
}

func TestPaginateDisabled(t *testing.T) {
	spec := paginationSpec(10, 0)
	pages, err := spec.Paginate()
	if err != nil {
		t.Fatalf("Paginate() error: %s", err)
	}
	if len(pages) != 1 || pages[0] != spec {
		t.Errorf("Paginate() with no limit should return the spec itself")
	}
}

func TestPaginateRequiresColumnOptions(t *testing.T) {
	spec := paginationSpec(10, 4)
	spec.ColumnOptions = nil
	if _, err := spec.Paginate(); err == nil {
		t.Errorf("Paginate() without extracted column options: expected an error, got none")
	}
}

func TestPaginateOnlySpecialColumns(t *testing.T) {
	spec := &GridSpec{
		Options:       SpecOptions{MaxColumnsPerPage: 4},
		Cells:         [][]string{{"", "station", "timezone"}},
		ColumnOptions: [][]string{{}, {}, {}},
	}
	if _, err := spec.Paginate(); err == nil {
		t.Errorf("Paginate() with only special columns: expected an error, got none")
	}
}

func TestStationCodes(t *testing.T) {
	spec := &GridSpec{Cells: [][]string{
		{"", "station", "59"},
		{"route-name", "", ""},
		{"updown", "", ""},
		{"CHI", "", ""},
		{"MEM", "", ""},
	}}
	got := spec.StationCodes()
	want := []string{"CHI", "MEM"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("StationCodes() got = %+v, want = %+v, diff = %s", got, want, diff)
	}
}

func TestTrainSpecColumnKeys(t *testing.T) {
	spec := &GridSpec{Cells: [][]string{
		{"", "station", "services", "59 / 60", "91 monday", "timezone"},
	}}
	got := spec.TrainSpecColumnKeys()
	want := []string{"59 / 60", "91 monday"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("TrainSpecColumnKeys() got = %+v, want = %+v, diff = %s", got, want, diff)
	}
}
