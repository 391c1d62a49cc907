package record

import "codeberg.org/mutker/qosprobe/internal/errors"

const (
	ErrMalformedRecord = errors.ErrorCode("record_malformed")
)
