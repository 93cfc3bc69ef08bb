package speechtotext

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// ErrJobFailed is returned by WaitForJob when the job ends in the failed status.
var ErrJobFailed = errors.New("recognition job failed")

// WaitForJob polls a job every interval until it completes or fails. A zero
// interval uses the default; the wait is bounded by ctx and by a default
// timeout.
func (c *Client) WaitForJob(ctx context.Context, opts *JobOptions, interval time.Duration) (*RecognitionJob, error) {
	call, err := c.CheckJob(opts)
	if err != nil {
		return nil, err
	}

	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}

	pollCtx, cancel := context.WithTimeout(ctx, constants.DefaultJobPollTimeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := call.Execute(pollCtx)
		if err != nil {
			return nil, fmt.Errorf("checking job %s: %w", opts.ID, err)
		}

		if job.Done() {
			if job.Status == JobStatusFailed {
				return job, fmt.Errorf("%w: %s", ErrJobFailed, jobWarnings(job))
			}

			return job, nil
		}

		select {
		case <-pollCtx.Done():
			return job, fmt.Errorf("waiting for job %s: %w", opts.ID, pollCtx.Err())
		case <-ticker.C:
		}
	}
}

func jobWarnings(job *RecognitionJob) string {
	if len(job.Warnings) == 0 {
		return "no error details available"
	}

	return strings.Join(job.Warnings, "; ")
}
