// Package uuidv7 generates the time-ordered identifiers used as record IDs.
// UUIDv7's millisecond prefix keeps btree index locality aligned with insert
// order.
package uuidv7

import "github.com/google/uuid"

func New() (uuid.UUID, error) {
	return uuid.NewV7()
}

// NewString returns a UUIDv7 in canonical string form. Services hold it as
// `var newUUID = uuidv7.NewString` so tests can pin IDs.
func NewString() (string, error) {
	u, err := New()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
