package parser

import "codeberg.org/mutker/qosprobe/internal/errors"

const (
	ErrInvalidMode = errors.ErrorCode("parser_invalid_cpu_mode")
)
