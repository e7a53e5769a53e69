package scraper

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// FlightGroup wraps scraping operations with singleflight so concurrent
// refreshes of the same source collapse into one portal request.
type FlightGroup struct {
	group singleflight.Group
}

// NewFlightGroup creates a new flight group
func NewFlightGroup() *FlightGroup {
	return &FlightGroup{}
}

// Do executes a scraping operation with singleflight. Multiple
// concurrent requests for the same key only execute the function once;
// shared reports whether this caller received a collapsed result.
func (f *FlightGroup) Do(ctx context.Context, key string, fn func() (interface{}, error)) (v interface{}, shared bool, err error) {
	result, err, shared := f.group.Do(key, func() (interface{}, error) {
		// Check context before executing
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		return fn()
	})

	return result, shared, err
}

// Forget removes a key from the group, allowing new requests to execute
func (f *FlightGroup) Forget(key string) {
	f.group.Forget(key)
}
