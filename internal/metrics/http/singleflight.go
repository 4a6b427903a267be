package metricshttp

import (
	"context"

	"golang.org/x/sync/singleflight"
)

var readGroup singleflight.Group

// singleflightRead collapses concurrent dashboard reads of the same key into one load.
func singleflightRead(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := readGroup.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
