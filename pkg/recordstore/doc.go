// Package recordstore provides an in-process, concurrency-safe keyed store
// with auto-incrementing integer identities.
//
// One [Store] is created per entity kind at start-up and handed to whoever
// serves that entity. Records are plain values implementing [Record]:
//
//	type Record[R any] interface {
//	    Key() int
//	    Clone() R
//	}
//
// A [Builder] turns a creation payload into a full record once the store has
// picked its identifier.
//
// # Updates
//
// Two update conventions exist and are kept apart on purpose:
//
//   - [Store.Update] takes a creation-shaped payload and rebuilds the record
//     under the given id.
//   - [Store.Replace] takes a fully formed record whose own key must equal the
//     id argument, otherwise [ErrIdentityMismatch] is returned.
//
// Neither inserts: updating a missing id reports absence.
//
// # Concurrency
//
// Every operation, reads included, holds a single store-wide mutex for its
// whole duration. Operations on one store are totally ordered. There is no
// atomicity across stores.
package recordstore
