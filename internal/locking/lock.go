// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package locking

import (
	"errors"
	"fmt"
)

// ConflictError represents a version conflict during a compare-and-set write
type ConflictError struct {
	Key             string
	ExpectedVersion int64
	ActualVersion   int64 // -1 when unknown
}

func (e *ConflictError) Error() string {
	if e.ActualVersion < 0 {
		return fmt.Sprintf("version conflict on %s: expected %d", e.Key, e.ExpectedVersion)
	}
	return fmt.Sprintf("version conflict on %s: expected %d, got %d", e.Key, e.ExpectedVersion, e.ActualVersion)
}

// IsConflict reports whether err is, or wraps, a ConflictError
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
