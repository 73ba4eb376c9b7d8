package common

import (
	"errors"
	"sync"
)

// RunParallel takes multiple functions that each return an error,
// runs them in parallel using goroutines, then aggregates any
// errors using errors.Join.
func RunParallel(funcs ...func() error) (error, int) {
	var wg sync.WaitGroup
	errs := make(chan error, len(funcs))

	for _, fn := range funcs {
		wg.Add(1)
		go func(fn func() error) {
			defer wg.Done()
			if err := fn(); err != nil {
				errs <- err
			}
		}(fn)
	}
	wg.Wait()
	close(errs)

	var allErrs []error
	for err := range errs {
		allErrs = append(allErrs, err)
	}
	return errors.Join(allErrs...), len(allErrs)
}

// ParallelMap applies fn to every element of in concurrently, with at most
// limit calls in flight (limit <= 0 means unbounded). Results keep the
// input order.
func ParallelMap[T, R any](in []T, limit int, fn func(int, T) (R, error)) ([]R, []error) {
	results := make([]R, len(in))
	errs := make([]error, len(in))
	if limit <= 0 || limit > len(in) {
		limit = len(in)
	}
	sem := make(chan struct{}, limit)
	tasks := make([]func() error, 0, len(in))
	for i := range in {
		tasks = append(tasks, func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = fn(i, in[i])
			return errs[i]
		})
	}
	RunParallel(tasks...)
	return results, errs
}
