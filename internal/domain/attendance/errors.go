package attendance

import "errors"

var (
	ErrInvalidDateRange  = errors.New("end_date must not be before start_date")
	ErrUnsupportedFormat = errors.New("format must be csv or xlsx")
)
