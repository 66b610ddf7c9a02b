package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnsupportedDialect = errors.New("unsupported datasource dialect")
)
