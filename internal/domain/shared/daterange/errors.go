package daterange

import "stayhub/internal/domain/shared/fault"

var (
	ErrMissingBound = fault.New(fault.ErrInvalidInput, "invalid_input", "daterange: start and end are required")
	ErrInvalidRange = fault.New(fault.ErrInvalidInput, "invalid_date_range", "daterange: end must be after start")
)
