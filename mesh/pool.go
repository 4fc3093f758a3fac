package mesh

import (
	"context"
	"runtime"

	"github.com/alitto/pond/v2"
)

// Job is one volume to mesh. Volumes must not be mutated while GenerateAll runs.
type Job struct {
	Name   string
	Volume Volume
}

type Result struct {
	Name     string
	Vertices []QuadVertex
	Indices  []int
	Err      error
}

// GenerateAll meshes every job with Quad on a bounded worker pool.
// Results are returned in job order. Jobs that have not started when ctx is
// cancelled report ctx.Err().
func GenerateAll(ctx context.Context, jobs []Job, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(jobs))
	pool := pond.NewPool(workers)

	for i, job := range jobs {
		i, job := i, job
		pool.Submit(func() {
			results[i].Name = job.Name
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i].Vertices, results[i].Indices = Generate(job.Volume, Quad)
		})
	}
	pool.StopAndWait()

	return results, ctx.Err()
}
