package products

import (
	"errors"
	"fmt"
)

var (
	ErrSourceUnavailable = errors.New("review source unavailable")
	ErrMalformedRecord   = errors.New("malformed review record")
	ErrProductNotFound   = errors.New("product not found")
	ErrRepositoryEmpty   = errors.New("products not loaded")
)

type ProductNotFoundError struct {
	ID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", e.ID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// MalformedRecordError reports the first row of a load that could not be
// coerced into a Review. Row is 1-based and counts data rows only.
type MalformedRecordError struct {
	Row    int
	Column string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("malformed review record at row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("malformed review record at row %d, column %s: %v", e.Row, e.Column, e.Err)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrSourceUnavailable, err)
}
