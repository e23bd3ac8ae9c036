// Package ratelimit bounds the number of requests per client key within a
// trailing time window. The decision state lives in a store shared by every
// server instance so the bound holds under multi-instance deployment.
package ratelimit

import (
	"context"
	"time"
)

// Limiter is the capability consumed by the request gate: one decision per key.
// Being over the limit is a decision, not an error; errors mean the backing
// store could not be consulted.
type Limiter interface {
	Limit(ctx context.Context, key string) (Decision, error)
}

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}
