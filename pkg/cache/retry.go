package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrBackend marks failures talking to a remote backend.
var ErrBackend = errors.New("cache backend error")

// connectTries is how many pings a remote backend gets before NewRedisCache
// or NewMongoCache gives up.
const connectTries = 3

// connectBackOff paces the pings: 1s, then 2s, with jitter.
var connectBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	return b
}

// ping runs fn until it succeeds, connectTries run out or ctx ends. An error
// wrapped with backoff.Permanent stops at once.
func ping(ctx context.Context, backend string, fn func(context.Context) error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, backoff.WithBackOff(connectBackOff()), backoff.WithMaxTries(connectTries))
	if err != nil {
		return fmt.Errorf("%w: ping %s: %w", ErrBackend, backend, err)
	}
	return nil
}
