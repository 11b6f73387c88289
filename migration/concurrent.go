package migration

import (
	"golang.org/x/sync/errgroup"
)

// ConcurrentMapFuncWithError applies f to every input with at most concurrency
// calls in flight and returns the outputs in input order. The first error wins.
func ConcurrentMapFuncWithError[Tin any, Tout any](inputs []Tin, concurrency int, f func(Tin) (Tout, error)) ([]Tout, error) {
	eg := errgroup.Group{}
	if concurrency == 0 {
		// disable concurrency
		eg.SetLimit(1)
	} else if concurrency > 0 {
		eg.SetLimit(concurrency)
	}

	outputs := make([]Tout, len(inputs))
	for i, in := range inputs {
		eg.Go(func() error {
			out, err := f(in)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
