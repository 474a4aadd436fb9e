package domain

import "errors"

// ErrInsufficientMembers means fewer than two eligible members remained
// after filtering; no pairing is possible.
var ErrInsufficientMembers = errors.New("not enough members to create pairs")

// NotFoundError reports that a channel (or its membership) did not resolve.
type NotFoundError struct {
	Kind string // "channel", "members"
	Name string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found: " + e.Name
}
