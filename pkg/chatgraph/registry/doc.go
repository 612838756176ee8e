// Package registry provides a generic thread-safe registry for values indexed
// by an ordered key.
//
// # Basic Usage
//
//	r := registry.New[string, Factory]()
//	if err := r.Add("booking", newBooking); err != nil {
//	    return err // ErrDuplicateKey
//	}
//
//	factory, err := r.Lookup("booking")
//	if errors.Is(err, registry.ErrNotFound) {
//	    ...
//	}
//
// Keys and All visit entries in ascending key order, which keeps listings
// stable.
//
// # Thread Safety
//
// Every method is safe for concurrent use. All iterates over a
// snapshot, so the registry may be mutated while iterating.
package registry
