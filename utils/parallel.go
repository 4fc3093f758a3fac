package utils

import (
	"errors"
	"runtime"

	"github.com/alitto/pond/v2"
)

// forEach runs fn(0..n-1) on a bounded pool and joins the errors.
func forEach(n int, fn func(i int) error) error {
	errs := make([]error, n)
	pool := pond.NewPool(runtime.NumCPU())
	for i := 0; i < n; i++ {
		i := i
		pool.Submit(func() { errs[i] = fn(i) })
	}
	pool.StopAndWait()
	return errors.Join(errs...)
}
