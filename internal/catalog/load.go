package catalog

import (
	"context"
	"time"
)

const defaultLoadTimeout = 2 * time.Second

// FetchFunc fetches the remote dimension catalog. The API client
// provides one; tests substitute their own.
type FetchFunc func(ctx context.Context) ([]DimensionPreset, error)

// Load races the remote preset fetch against a short timeout and falls
// back to the embedded catalog when the fetch is slow, fails, or
// returns nothing. The returned bool reports whether the remote list
// was used.
func Load(ctx context.Context, fetch FetchFunc, timeout time.Duration) (*Catalog, bool) {
	if fetch == nil {
		return Default(), false
	}
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		dims []DimensionPreset
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		dims, err := fetch(ctx)
		ch <- result{dims: dims, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil || len(res.dims) == 0 {
			return Default(), false
		}
		return New(res.dims, defaultStyles()), true
	case <-ctx.Done():
		return Default(), false
	}
}

// FromDimensions builds a catalog from a stored dimension list, paired
// with the embedded styles.
func FromDimensions(dims []DimensionPreset) *Catalog {
	return New(dims, defaultStyles())
}
