// Package csv is a wrapper around the stdlib csv library that provides a nice API
// for the GTFS table parsers and the timetable spec grid reader.
//
// Because, of course, everything can be solved with another layer of indirection.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/transitkit/timetable/constants"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// File is a header-indexed view over one GTFS table file.
type File struct {
	name          constants.FeedFile
	csvReader     *csv.Reader
	headerMap     map[string]int
	headerContent []string
	rowNumber     int
	currentRow    *row
	ioErr         error
	closer        func() error
}

type row struct {
	cells       []string
	missingKeys []string
}

func New(name constants.FeedFile, reader io.ReadCloser) (*File, error) {
	csvReader := BOMAwareCSVReader(reader)
	csvReader.FieldsPerRecord = -1
	firstRow, err := csvReader.Read()
	// We don't reuse the first/header record as we keep it around for
	// diagnostics.
	csvReader.ReuseRecord = true
	if err == io.EOF {
		reader.Close()
		return nil, fmt.Errorf("%s contains no rows", name)
	} else if err != nil {
		reader.Close()
		return nil, err
	}
	m := map[string]int{}
	for i, colHeader := range firstRow {
		m[colHeader] = i
	}
	return &File{
		name:          name,
		headerMap:     m,
		headerContent: firstRow,
		csvReader:     csvReader,
		closer:        reader.Close,
	}, nil
}

func (f *File) Name() constants.FeedFile {
	return f.name
}

func (f *File) HeaderContent() []string {
	return f.headerContent
}

// RequiredColumn reads a column that must be present and non-empty; reads of
// missing values are recorded and reported by MissingRowKeys.
type RequiredColumn struct {
	i int
	s string
	f *File
}

func (f *File) RequiredColumn(s string) RequiredColumn {
	i, b := f.headerMap[s]
	if !b {
		i = -1
	}
	return RequiredColumn{i, s, f}
}

func (c RequiredColumn) Read() string {
	r := c.f.currentRow
	if c.i < 0 || c.i >= len(r.cells) || r.cells[c.i] == "" {
		r.missingKeys = append(r.missingKeys, c.s)
		return ""
	}
	return r.cells[c.i]
}

type OptionalColumn struct {
	i int
	f *File
}

func (f *File) OptionalColumn(s string) OptionalColumn {
	i, b := f.headerMap[s]
	if !b {
		i = -1
	}
	return OptionalColumn{i: i, f: f}
}

func (c OptionalColumn) Read() string {
	if c.i < 0 || c.i >= len(c.f.currentRow.cells) {
		return ""
	}
	return c.f.currentRow.cells[c.i]
}

func (c OptionalColumn) ReadOr(s string) string {
	if c.i < 0 || c.i >= len(c.f.currentRow.cells) || c.f.currentRow.cells[c.i] == "" {
		return s
	}
	return c.f.currentRow.cells[c.i]
}

func (f *File) NextRow() bool {
	cells, err := f.csvReader.Read()
	if err == io.EOF {
		f.currentRow = nil
		return false
	}
	if err != nil {
		f.currentRow = nil
		f.ioErr = err
		return false
	}
	if f.currentRow == nil {
		f.currentRow = &row{}
	}
	f.rowNumber += 1
	f.currentRow.cells = cells
	f.currentRow.missingKeys = nil
	return true
}

func (f *File) RowNumber() int {
	return f.rowNumber
}

func (f *File) MissingRowKeys() []string {
	return f.currentRow.missingKeys
}

func (f *File) Close() error {
	closeErr := f.closer()
	if f.ioErr != nil {
		return f.ioErr
	}
	return closeErr
}

// ReadGrid reads a headerless CSV file into a rectangular grid of strings.
// Short rows are padded with empty cells so every row has the width of the
// widest row. Used for the timetable spec grid, where trailing blank cells
// are routinely omitted by spreadsheet exports.
func ReadGrid(reader io.Reader) ([][]string, error) {
	csvReader := BOMAwareCSVReader(reader)
	csvReader.FieldsPerRecord = -1
	var grid [][]string
	width := 0
	for {
		cells, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rowCopy := make([]string, len(cells))
		copy(rowCopy, cells)
		grid = append(grid, rowCopy)
		if len(rowCopy) > width {
			width = len(rowCopy)
		}
	}
	for i, cells := range grid {
		for len(cells) < width {
			cells = append(cells, "")
		}
		grid[i] = cells
	}
	return grid, nil
}

// From: https://stackoverflow.com/a/76023436
//
// BOMAwareCSVReader will detect a UTF BOM (Byte Order Mark) at the
// start of the data and transform to UTF8 accordingly.
// If there is no BOM, it will read the data without any transformation.
func BOMAwareCSVReader(reader io.Reader) *csv.Reader {
	var transformer = unicode.BOMOverride(encoding.Nop.NewDecoder())
	return csv.NewReader(transform.NewReader(reader, transformer))
}
