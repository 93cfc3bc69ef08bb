package watson_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

func TestRunBatch(t *testing.T) {
	t.Parallel()

	calls := []*watson.ServiceCall[translation]{
		succeedingCall("uno", nil),
		failingCall(http.StatusBadRequest),
		succeedingCall("tres", nil),
	}

	results := watson.RunBatch(context.Background(), calls, 2)
	require.Len(t, results, 3)

	for i, result := range results {
		assert.Equal(t, i, result.Index)
	}

	assert.True(t, results[0].Success())
	assert.Equal(t, "uno", results[0].Value.Text)
	assert.False(t, results[1].Success())
	assert.True(t, watson.IsInvalidArgument(results[1].Error))
	assert.Equal(t, "tres", results[2].Value.Text)

	summary := watson.Summarize(results)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunBatch_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32

	calls := make([]*watson.ServiceCall[watson.Empty], 8)
	for i := range calls {
		calls[i] = watson.NewServiceCall(func(context.Context, http.Header) (*watson.DetailedResponse[watson.Empty], error) {
			current := inFlight.Add(1)
			defer inFlight.Add(-1)

			for {
				old := peak.Load()
				if current <= old || peak.CompareAndSwap(old, current) {
					break
				}
			}

			time.Sleep(10 * time.Millisecond)

			return &watson.DetailedResponse[watson.Empty]{Result: &watson.Empty{}}, nil
		})
	}

	results := watson.RunBatch(context.Background(), calls, 0)
	assert.Equal(t, 8, watson.Summarize(results).Succeeded)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}
