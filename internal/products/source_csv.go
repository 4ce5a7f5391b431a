package products

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type CSVSource struct {
	desc Descriptor
}

func NewCSVSource(d Descriptor) *CSVSource {
	if d.Kind == "" {
		d.Kind = KindCSV
	}
	return &CSVSource{desc: d}
}

func (s *CSVSource) Descriptor() Descriptor { return s.desc }

func (s *CSVSource) ReadReviews(ctx context.Context, limit int) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("open "+s.desc.Filename, err)
	}

	f, err := os.Open(s.desc.Filename)
	if err != nil {
		return nil, unavailable("open "+s.desc.Filename, err)
	}
	defer f.Close()

	return readReviewsCSV(f, limit)
}

// readReviewsCSV skips the header row and parses up to limit data rows.
func readReviewsCSV(r io.Reader, limit int) ([]Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []Review{}, nil
		}
		return nil, csvError(0, err)
	}

	out := make([]Review, 0, min(limit, MaxRows))
	for row := 1; row <= limit; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(row, err)
		}

		rv, err := parseReviewRecord(row, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, nil
}

func csvError(row int, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &MalformedRecordError{Row: row, Err: err}
	}
	return unavailable("read csv", err)
}

func parseReviewRecord(row int, rec []string) (Review, error) {
	if len(rec) != len(reviewColumns) {
		return Review{}, &MalformedRecordError{
			Row: row,
			Err: fmt.Errorf("expected %d columns, got %d", len(reviewColumns), len(rec)),
		}
	}

	p := recordParser{row: row, rec: rec}
	rv := Review{
		ID:                     p.int64(0),
		ProductID:              rec[1],
		UserID:                 rec[2],
		ProfileName:            rec[3],
		HelpfulnessNumerator:   p.int(4),
		HelpfulnessDenominator: p.int(5),
		Score:                  p.int(6),
		Time:                   p.int64(7),
		Summary:                rec[8],
		Text:                   rec[9],
	}
	if p.err != nil {
		return Review{}, p.err
	}
	return rv, nil
}

// recordParser keeps the first coercion error of a record.
type recordParser struct {
	row int
	rec []string
	err error
}

func (p *recordParser) int64(col int) int64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(p.rec[col]), 10, 64)
	if err != nil {
		p.err = &MalformedRecordError{Row: p.row, Column: reviewColumns[col], Err: err}
	}
	return v
}

func (p *recordParser) int(col int) int {
	return int(p.int64(col))
}
