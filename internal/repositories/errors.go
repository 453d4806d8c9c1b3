package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrVersionMismatch reports an optimistic-lock failure: the row exists but
// its version no longer matches the one the caller read.
var ErrVersionMismatch = errors.New("version mismatch")

// IsNotFoundError reports whether the error came from a lookup that matched
// no rows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
