package leave

import "errors"

var (
	ErrLeaveNotFound    = errors.New("leave request not found")
	ErrInvalidStatus    = errors.New("status must be pending, approved or rejected")
	ErrInvalidDateRange = errors.New("end_date must not be before start_date")
)
