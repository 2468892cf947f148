package analysis

import (
	"context"

	"github.com/jsphweid/pianodiff/align"
	"github.com/jsphweid/pianodiff/config"
	"github.com/remeh/sizedwaitgroup"
)

// Job is one reference/attempt pair of a batch.
type Job struct {
	Name        string
	RefPath     string
	AttemptPath string
	Meta        config.Meta
	Options     Options
}

type BatchResult struct {
	Job    Job
	Result *Result
	Err    error
}

// AnalyzeBatch analyzes independent jobs on at most workers goroutines and
// returns the results in job order. Jobs not yet started when ctx is done
// report ctx.Err().
func AnalyzeBatch(ctx context.Context, jobs []Job, aligner align.Aligner, workers int) []BatchResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]BatchResult, len(jobs))
	swg := sizedwaitgroup.New(workers)
	for i, job := range jobs {
		if err := swg.AddWithContext(ctx); err != nil {
			results[i] = BatchResult{Job: job, Err: err}
			continue
		}
		go func(i int, job Job) {
			defer swg.Done()
			if err := ctx.Err(); err != nil {
				results[i] = BatchResult{Job: job, Err: err}
				return
			}
			res, err := AnalyzeFiles(job.RefPath, job.AttemptPath, job.Meta, aligner, job.Options)
			results[i] = BatchResult{Job: job, Result: res, Err: err}
		}(i, job)
	}
	swg.Wait()
	return results
}
