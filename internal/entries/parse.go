package entries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/persistorai/papergraph/internal/models"
)

// CSV column headers.
const (
	ColName = "Name"
	ColTag  = "Tag"
	ColLink = "Link"
	ColDate = "Date Added"
)

// DateLayout formats the dates filled in for "today".
const DateLayout = "2006-01-02"

// Header is the column order written for new CSV files.
var Header = []string{ColName, ColTag, ColLink, ColDate}

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ParseCSV reads entries from a CSV with a header row. Columns are matched
// by name; Name and Tag are required, Link and Date Added are optional.
func ParseCSV(r io.Reader) ([]models.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	for _, col := range []string{ColName, ColTag} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}

	field := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[i])
	}

	var out []models.Entry

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		e := models.Entry{
			Name: field(row, ColName),
			Tag:  field(row, ColTag),
			Link: field(row, ColLink),
			Date: field(row, ColDate),
		}

		if e == (models.Entry{}) {
			continue
		}

		out = append(out, e)
	}

	return out, nil
}

// WriteCSV writes entries with the standard header.
func WriteCSV(w io.Writer, list []models.Entry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, e := range list {
		if err := cw.Write([]string{e.Name, e.Tag, e.Link, e.Date}); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// ParseInline parses the shorthand "name, tag, link[, date]; ..." used on
// the command line. A missing date or the word "today" becomes now's date.
func ParseInline(raw string, now time.Time) ([]models.Entry, error) {
	var out []models.Entry

	for i, chunk := range strings.Split(raw, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		fields := strings.Split(chunk, ",")
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}

		if len(fields) < 2 || len(fields) > 4 {
			return nil, fmt.Errorf("entry %d: want \"name, tag[, link[, date]]\", got %d fields", i+1, len(fields))
		}

		e := models.Entry{Name: fields[0], Tag: fields[1], Date: now.Format(DateLayout)}

		if len(fields) >= 3 {
			e.Link = fields[2]
		}

		if len(fields) == 4 && !strings.EqualFold(fields[3], "today") && fields[3] != "" {
			e.Date = fields[3]
		}

		out = append(out, e)
	}

	return out, nil
}
