package products

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	KindCSV      = "csv"
	KindPostgres = "postgres"
)

// Descriptor identifies where review rows are read from. It is also the
// metadata the service reports about its data.
type Descriptor struct {
	Kind     string `json:"kind,omitempty"`
	Filename string `json:"filename,omitempty"`
	Table    string `json:"table,omitempty"`
	Version  string `json:"version"`
}

// Source reads raw review rows. Implementations return at most limit rows,
// wrap open/read failures with ErrSourceUnavailable and coercion failures
// with ErrMalformedRecord.
type Source interface {
	Descriptor() Descriptor
	ReadReviews(ctx context.Context, limit int) ([]Review, error)
}

// reviewColumns is the fixed column order of a review row. Source headers
// are not consulted.
var reviewColumns = []string{
	"id",
	"product_id",
	"user_id",
	"profile_name",
	"helpfulness_numerator",
	"helpfulness_denominator",
	"score",
	"time",
	"summary",
	"text",
}

// NewSource picks the Source implementation for d. db is only used by the
// postgres kind.
func NewSource(d Descriptor, db Querier) (Source, error) {
	switch d.Kind {
	case "", KindCSV:
		if d.Filename == "" {
			return nil, errors.New("csv source: filename is required")
		}
		return NewCSVSource(d), nil
	case KindPostgres:
		if db == nil {
			return nil, errors.New("postgres source: connection is required")
		}
		return NewPostgresSource(db, d), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", d.Kind)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

func validateReview(row int, r Review) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &MalformedRecordError{
			Row:    row,
			Column: fe.Field(),
			Err:    fmt.Errorf("value %v fails %s%s", fe.Value(), fe.Tag(), paramSuffix(fe.Param())),
		}
	}
	return &MalformedRecordError{Row: row, Err: err}
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}
