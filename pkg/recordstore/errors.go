package recordstore

import "errors"

// ErrIdentityMismatch is returned when a record's own key disagrees with the
// id it is being stored under.
var ErrIdentityMismatch = errors.New("recordstore: record id does not match key id")
