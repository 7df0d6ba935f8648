// SPDX-License-Identifier: EPL-2.0

package audread

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/audread/audio"
)

// Probe opens every path concurrently, reads its description and closes
// it again. The descriptions are returned in the order of paths.
//
// The first failure cancels the remaining work and is returned, prefixed
// with the path it belongs to; it still matches the audio error kinds.
// Probe also stops when ctx is done; it then returns ctx.Err() as is,
// not as an *audio.Error.
func Probe(ctx context.Context, paths []string, opts ...Option) ([]audio.Description, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]audio.Description, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			r, err := Open(path, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = r.Description()
			if err := r.Close(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
