package dataflow_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_management_sample/console/pkg/dataflow"
)

type row struct {
	ID   string
	Name string
}

func TestPipeline_ParseRetrySink(t *testing.T) {
	ctx := context.Background()

	source := dataflow.From(ctx, "1,Alice", "2,Bob", "retry,Charlie", "broken")

	var parseErrors int32
	parsed := dataflow.Map(ctx, source, func(s string) (row, error) {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return row{}, fmt.Errorf("invalid format %q", s)
		}
		return row{ID: parts[0], Name: parts[1]}, nil
	}, dataflow.WithWorkers(2), dataflow.WithErrorHandler(func(error) bool {
		atomic.AddInt32(&parseErrors, 1)
		return true
	}))

	var attempts int32
	saved := dataflow.Map(ctx, parsed, func(r row) (row, error) {
		if r.ID == "retry" && atomic.AddInt32(&attempts, 1) < 3 {
			return row{}, errors.New("transient error")
		}
		return r, nil
	}, dataflow.WithRetry(3, dataflow.LinearBackoff(time.Millisecond)))

	results, err := dataflow.Collect(ctx, saved)
	require.NoError(t, err)

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, names)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&parseErrors))
}

func TestMap_RetriesExhaustedDropsItem(t *testing.T) {
	ctx := context.Background()

	var calls int32
	out := dataflow.Map(ctx, dataflow.From(ctx, 1, 2), func(n int) (int, error) {
		if n == 2 {
			atomic.AddInt32(&calls, 1)
			return 0, errors.New("permanent")
		}
		return n * 10, nil
	}, dataflow.WithRetry(2, nil))

	got, err := dataflow.Collect(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "one attempt plus two retries")
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	evens := dataflow.Filter(ctx, dataflow.From(ctx, 1, 2, 3, 4, 5, 6), func(n int) bool { return n%2 == 0 })

	got, err := dataflow.Collect(ctx, evens)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, got)
}

func TestForEach(t *testing.T) {
	ctx := context.Background()

	t.Run("concurrent workers", func(t *testing.T) {
		var mu sync.Mutex
		sum := 0
		err := dataflow.ForEach(ctx, dataflow.From(ctx, 1, 2, 3, 4), func(n int) error {
			mu.Lock()
			defer mu.Unlock()
			sum += n
			return nil
		}, dataflow.WithWorkers(3))
		require.NoError(t, err)
		assert.Equal(t, 10, sum)
	})

	t.Run("first unhandled error is returned", func(t *testing.T) {
		boom := errors.New("boom")
		var seen int32
		err := dataflow.ForEach(ctx, dataflow.From(ctx, 1, 2, 3), func(n int) error {
			atomic.AddInt32(&seen, 1)
			if n == 2 {
				return boom
			}
			return nil
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int32(3), atomic.LoadInt32(&seen), "remaining items still processed")
	})

	t.Run("handled errors are swallowed", func(t *testing.T) {
		err := dataflow.ForEach(ctx, dataflow.From(ctx, 1), func(int) error {
			return errors.New("ignored")
		}, dataflow.WithErrorHandler(func(error) bool { return true }))
		assert.NoError(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		ch := make(chan int)
		cancel()
		err := dataflow.ForEach(cctx, dataflow.New[int](ch), func(int) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
